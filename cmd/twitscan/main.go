package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"twitscan/internal/analytics"
	"twitscan/internal/cmdlog"
	"twitscan/internal/config"
	"twitscan/internal/graph"
	"twitscan/internal/interact"
	"twitscan/internal/jobs"
	"twitscan/internal/logging"
	"twitscan/internal/metrics"
	"twitscan/internal/model"
	"twitscan/internal/score"
	"twitscan/internal/store/sqlitedb"
	"twitscan/internal/theme"
	"twitscan/internal/topics"
	"twitscan/internal/xclient"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	var run func([]string) error
	switch cmd {
	case "init":
		run = cmdInit
	case "scan":
		run = cmdScan
	case "score":
		run = cmdScore
	case "rank":
		run = cmdRank
	case "popularity":
		run = cmdPopularity
	case "info":
		run = cmdInfo
	case "find":
		run = cmdFind
	default:
		printHelp()
		return
	}
	if err := cmdlog.Run(cmd, func() error { return run(os.Args[2:]) }); err != nil {
		theme.Fatal(err)
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: twitscan <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./twitscan.yaml")
	fmt.Println("  scan        Scan the configured accounts and their followers")
	fmt.Println("  score       Proximity vector between two stored users")
	fmt.Println("  rank        Rank stored users by closeness to one user, or all users")
	fmt.Println("  popularity  Who engages with a user's posts")
	fmt.Println("  info        Row counts per table")
	fmt.Println("  find        Search users, posts or hashtags")
}

// env is what every command past init needs.
type env struct {
	cfg config.Config
	db  *sqlitedb.DB
}

func setup(cfgPath string) (*env, error) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	metrics.StartServer(cfg.Metrics.Addr)
	db, err := sqlitedb.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Storage.DBPath, err)
	}
	return &env{cfg: cfg, db: db}, nil
}

func (e *env) close() { _ = e.db.Close() }

// lookup resolves a numeric id or a handle (with or without '@').
func (e *env) lookup(ctx context.Context, ref string) (model.User, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return e.db.UserByID(ctx, id)
	}
	return e.db.UserByScreenName(ctx, strings.TrimPrefix(ref, "@"))
}

func (e *env) policy() (score.Policy, error) {
	w := e.cfg.Scoring.Weights
	return score.PolicyByName(e.cfg.Scoring.Policy, score.Weights{
		Comment: w.Comment, Retweet: w.Retweet, Favorite: w.Favorite,
		Mention: w.Mention, Entourage: w.Entourage, Hashtag: w.Hashtag,
	})
}

func newClient(cfg config.Config) *xclient.HTTPClient {
	c := xclient.NewHTTPClient(cfg.Credentials.BearerToken)
	cr := cfg.Credentials
	if cr.HasOAuth1() {
		c.WithOAuth1(xclient.NewOAuth1(cr.ConsumerKey, cr.ConsumerSecret, cr.AccessToken, cr.AccessSecret))
	} else if cr.BearerToken == "" {
		logging.Warn("missing_credentials", map[string]any{"hint": "set X_BEARER_TOKEN or the X_CONSUMER_*/X_ACCESS_* variables"})
	}
	return c
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./twitscan.yaml", "path to write config")
	users := fs.String("users", "", "comma-separated screen names to scan")
	_ = fs.Parse(args)
	cfg := config.Default()
	for _, u := range strings.Split(*users, ",") {
		if u = strings.TrimSpace(strings.TrimPrefix(u, "@")); u != "" {
			cfg.Account.ScreenNames = append(cfg.Account.ScreenNames, u)
		}
	}
	if err := config.Save(*path, cfg); err != nil {
		return err
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	return nil
}

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	cfgPath := fs.String("config", "./twitscan.yaml", "config path")
	users := fs.String("users", "", "comma-separated screen names; defaults to account.screenNames")
	_ = fs.Parse(args)
	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.close()

	names := e.cfg.Account.ScreenNames
	if *users != "" {
		names = strings.Split(*users, ",")
	}
	if len(names) == 0 {
		return errors.New("no accounts to scan: pass -users or set account.screenNames")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc := e.cfg.Scan
	s := jobs.NewScanner(newClient(e.cfg), e.db, jobs.ScanOptions{
		MaxPosts:      sc.MaxPosts,
		MaxFollowers:  sc.MaxFollowers,
		FollowerLimit: sc.FollowerLimit,
		MaxAttempts:   sc.MaxAttempts,
		RetryDelay:    sc.RetryDelay,
		SkipFavorites: sc.SkipFavorites,
	})
	rep, err := s.Run(ctx, names)
	if err != nil {
		return err
	}
	fmt.Printf("scanned=%d known=%d skipped=%d failed=%d\n", rep.Scanned, rep.Known, rep.Skipped, rep.Failed)
	return nil
}

func cmdScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./twitscan.yaml", "config path")
	a := fs.String("a", "", "first user (handle or id)")
	b := fs.String("b", "", "second user (handle or id)")
	_ = fs.Parse(args)
	if *a == "" || *b == "" {
		return errors.New("score needs -a and -b")
	}
	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.close()
	ctx := context.Background()

	ua, err := e.lookup(ctx, *a)
	if err != nil {
		return err
	}
	ub, err := e.lookup(ctx, *b)
	if err != nil {
		return err
	}
	p, err := e.policy()
	if err != nil {
		return err
	}
	sess := score.NewSession(e.db, score.WithFoldCase(e.cfg.Scoring.FoldHashtagCase))
	v, err := sess.Score(ctx, ua.ID, ub.ID)
	if err != nil {
		return err
	}
	return printJSON(score.Ranked{Vector: v, Score: p.Apply(v)})
}

func cmdRank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	cfgPath := fs.String("config", "./twitscan.yaml", "config path")
	user := fs.String("user", "", "anchor user (handle or id); empty ranks every stored user")
	limit := fs.Int("limit", 20, "counterparts to keep per user (0 keeps all)")
	out := fs.String("out", "", "JSON output path for the full ranking (default scoring.output)")
	_ = fs.Parse(args)
	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.close()
	p, err := e.policy()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *user != "" {
		anchor, err := e.lookup(ctx, *user)
		if err != nil {
			return err
		}
		ids, err := e.db.UserIDs(ctx)
		if err != nil {
			return err
		}
		sess := score.NewSession(e.db, score.WithFoldCase(e.cfg.Scoring.FoldHashtagCase))
		ranked, err := sess.Rank(ctx, anchor.ID, ids, p, score.RankOptions{Limit: *limit})
		if err != nil {
			return err
		}
		fmt.Println(theme.Heading("closest to"), theme.Handle(anchor.ScreenName), "policy="+p.Name())
		for i, r := range ranked {
			u, err := e.db.UserByID(ctx, r.UserB)
			if err != nil {
				return err
			}
			fmt.Printf("%3d. %s score=%.3f entourage=%.2f hashtags=%.2f mentions=%d fav=%d rt=%d reply=%d\n",
				i+1, theme.HandleWidth(u.ScreenName, 24), r.Score, r.EntourageRatio, r.HashtagRatio,
				r.TotalMentions, r.TotalFavorites, r.TotalRetweets, r.TotalComments)
		}
		return nil
	}

	rankings, rep, err := jobs.RankAll(ctx, e.db, jobs.RankJobOptions{
		Workers:  e.cfg.Scoring.Workers,
		Policy:   p,
		FoldCase: e.cfg.Scoring.FoldHashtagCase,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = e.cfg.Scoring.Output
	}
	if err := jobs.WriteEngagements(path, rankings); err != nil {
		return err
	}
	fmt.Printf("ranked %d users into %s (p50=%s p99=%s)\n", rep.Users, path, rep.P50, rep.P99)
	return nil
}

func cmdPopularity(args []string) error {
	fs := flag.NewFlagSet("popularity", flag.ExitOnError)
	cfgPath := fs.String("config", "./twitscan.yaml", "config path")
	user := fs.String("user", "", "target user (handle or id)")
	_ = fs.Parse(args)
	if *user == "" {
		return errors.New("popularity needs -user")
	}
	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.close()
	ctx := context.Background()

	target, err := e.lookup(ctx, *user)
	if err != nil {
		return err
	}
	pop, err := interact.NewAggregator(e.db).Popularity(ctx, target.ID)
	if err != nil {
		return err
	}
	fmt.Println(theme.Heading("engagement with"), theme.Handle(target.ScreenName))
	for _, en := range pop {
		name := fmt.Sprintf("%-24d", en.UserID)
		if u, err := e.db.UserByID(ctx, en.UserID); err == nil {
			name = theme.HandleWidth(u.ScreenName, 24)
		} else if !model.IsNotFound(err) {
			return err
		}
		fmt.Printf("  %s fav=%d rt=%d reply=%d mentions=%d\n", name, en.Favorites, en.Retweets, en.Comments, en.Mentions)
	}
	return nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfgPath := fs.String("config", "./twitscan.yaml", "config path")
	user := fs.String("user", "", "show one stored user instead (handle or id)")
	_ = fs.Parse(args)
	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.close()
	ctx := context.Background()
	if *user != "" {
		return userInfo(ctx, e, *user)
	}
	info, err := e.db.Info(ctx)
	if err != nil {
		return err
	}
	fmt.Println(theme.Heading("database"), e.cfg.Storage.DBPath)
	for _, t := range sqlitedb.Tables {
		fmt.Printf("  %-12s %d\n", t, info[t])
	}
	return nil
}

func userInfo(ctx context.Context, e *env, ref string) error {
	u, err := e.lookup(ctx, ref)
	if err != nil {
		return err
	}
	posts, err := e.db.PostsByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	c, err := graph.NewResolver(e.db).Resolve(ctx, u.ID)
	if err != nil {
		return err
	}
	originals, replies, reposts := analytics.Kinds(posts)
	fmt.Println(theme.Heading("user"), theme.Handle(u.ScreenName), "id="+strconv.FormatInt(u.ID, 10))
	fmt.Printf("  joined %s verified=%t followers=%d friends=%d\n", u.CreatedAt.Format("2006-01-02"), u.Verified, u.FollowersCount, u.FriendsCount)
	fmt.Printf("  stored: friends=%d followers=%d entourage=%d\n", c.Friends.Len(), c.Followers.Len(), c.Entourage.Len())
	fmt.Printf("  posts=%d originals=%d replies=%d reposts=%d\n", len(posts), originals, replies, reposts)
	if peaks := analytics.PeakHours(analytics.HourlyActivity(posts), 3); len(peaks) > 0 {
		fmt.Printf("  most active (UTC hours): %v\n", peaks)
	}
	return nil
}

func cmdFind(args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	cfgPath := fs.String("config", "./twitscan.yaml", "config path")
	user := fs.String("user", "", "handle fragment")
	text := fs.String("text", "", "post text fragment")
	tag := fs.String("hashtag", "", "hashtag")
	_ = fs.Parse(args)
	e, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer e.close()
	ctx := context.Background()

	switch {
	case *user != "":
		users, err := e.db.FindUsers(ctx, *user)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%s id=%d followers=%d friends=%d\n", theme.HandleWidth(u.ScreenName, 24), u.ID, u.FollowersCount, u.FriendsCount)
		}
	case *text != "":
		posts, err := e.db.FindPosts(ctx, *text)
		if err != nil {
			return err
		}
		printPosts(posts)
	case *tag != "":
		x := topics.NewExtractor(e.db, topics.Options{FoldCase: e.cfg.Scoring.FoldHashtagCase})
		posts, err := x.PostsByHashtag(ctx, *tag)
		if err != nil {
			return err
		}
		printPosts(posts)
	default:
		return errors.New("find needs -user, -text or -hashtag")
	}
	return nil
}

func printPosts(posts []model.Post) {
	for _, p := range posts {
		fmt.Printf("%d by %d at %s\n  %s\n", p.ID, p.UserID, p.CreatedAt.Format("2006-01-02 15:04"), strings.ReplaceAll(p.Text, "\n", " "))
	}
}
