package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "twitscan.yaml")
	cfg := Default()
	cfg.Account.ScreenNames = []string{"alice", "bob"}
	cfg.Scan.RetryDelay = 2 * time.Second
	cfg.Scoring.Policy = "engagement"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Account.ScreenNames) != 2 || got.Scan.RetryDelay != 2*time.Second || got.Scoring.Policy != "engagement" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("scan:\n  maxPosts: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Scan.MaxPosts != 10 || got.Scan.MaxAttempts != 3 || got.Scoring.Weights.Comment != 3 {
		t.Fatalf("defaults not kept: %+v", got.Scan)
	}
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_BEARER_TOKEN", "tok")
	t.Setenv("TWITSCAN_DB", "/tmp/x.db")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Credentials.BearerToken != "tok" || cfg.Storage.DBPath != "/tmp/x.db" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Credentials.HasOAuth1() {
		t.Fatal("no oauth1 credentials were set")
	}
}
