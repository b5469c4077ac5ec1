package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures credentials, who to scan, and how scores are ranked.
type Config struct {
	Account     AccountConfig     `yaml:"account"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Storage     StorageConfig     `yaml:"storage"`
	Scan        ScanConfig        `yaml:"scan"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type AccountConfig struct {
	// Main accounts to scan; their followers are scanned afterwards.
	ScreenNames []string `yaml:"screenNames"`
}

type CredentialsConfig struct {
	// X/Twitter API bearer token. If empty, read from env X_BEARER_TOKEN
	BearerToken string `yaml:"bearerToken"`
	// OAuth1.0a credentials for v1.1 endpoints; preferred over the bearer token when set
	ConsumerKey    string `yaml:"consumerKey"`
	ConsumerSecret string `yaml:"consumerSecret"`
	AccessToken    string `yaml:"accessToken"`
	AccessSecret   string `yaml:"accessSecret"`
}

// HasOAuth1 reports whether all four user-context credentials are set.
func (c CredentialsConfig) HasOAuth1() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type ScanConfig struct {
	MaxPosts     int `yaml:"maxPosts"`
	MaxFollowers int `yaml:"maxFollowers"`
	// Followers of each main account to scan; zero scans none.
	FollowerLimit int           `yaml:"followerLimit"`
	MaxAttempts   int           `yaml:"maxAttempts"`
	RetryDelay    time.Duration `yaml:"retryDelay"`
	SkipFavorites bool          `yaml:"skipFavorites"`
}

type ScoringConfig struct {
	// Policy is "linear" or "engagement".
	Policy          string        `yaml:"policy"`
	Weights         WeightsConfig `yaml:"weights"`
	FoldHashtagCase bool          `yaml:"foldHashtagCase"`
	Workers         int           `yaml:"workers"`
	Output          string        `yaml:"output"`
}

type WeightsConfig struct {
	Comment   float64 `yaml:"comment"`
	Retweet   float64 `yaml:"retweet"`
	Favorite  float64 `yaml:"favorite"`
	Mention   float64 `yaml:"mention"`
	Entourage float64 `yaml:"entourage"`
	Hashtag   float64 `yaml:"hashtag"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

type MetricsConfig struct {
	// Addr to serve /metrics on, e.g. ":9090". Empty disables.
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "./twitscan.db"},
		Scan: ScanConfig{
			MaxPosts:      200,
			MaxFollowers:  5000,
			FollowerLimit: 100,
			MaxAttempts:   3,
			RetryDelay:    15 * time.Second,
		},
		Scoring: ScoringConfig{
			Policy:  "linear",
			Weights: WeightsConfig{Comment: 3, Retweet: 2, Favorite: 1, Mention: 1, Entourage: 1, Hashtag: 1},
			Workers: 4,
			Output:  "./engagements.json",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// ResolveEnv loads a .env file when present, then fills in config fields
// from environment variables if not set.
func (c *Config) ResolveEnv() {
	_ = godotenv.Load()
	setFromEnv(&c.Credentials.BearerToken, "X_BEARER_TOKEN")
	setFromEnv(&c.Credentials.ConsumerKey, "X_CONSUMER_KEY")
	setFromEnv(&c.Credentials.ConsumerSecret, "X_CONSUMER_SECRET")
	setFromEnv(&c.Credentials.AccessToken, "X_ACCESS_TOKEN")
	setFromEnv(&c.Credentials.AccessSecret, "X_ACCESS_SECRET")
	if v := os.Getenv("TWITSCAN_DB"); v != "" {
		c.Storage.DBPath = v
	}
	setFromEnv(&c.Logging.Level, "TWITSCAN_LOG_LEVEL")
	setFromEnv(&c.Metrics.Addr, "METRICS_ADDR")
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// Load reads YAML config from path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.ResolveEnv()
		return cfg, nil
	}
	return cfg, err
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
