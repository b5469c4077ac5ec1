package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/sync/errgroup"

	"twitscan/internal/interact"
	"twitscan/internal/logging"
	"twitscan/internal/score"
	"twitscan/internal/store/sqlitedb"
	"twitscan/internal/util"
)

type RankJobOptions struct {
	Workers  int
	Policy   score.Policy
	FoldCase bool
	// Limit keeps the top N counterparts per user; zero keeps all.
	Limit int
}

// UserRanking is one stored user and the users closest to them.
type UserRanking struct {
	UserID      int64          `json:"user_id"`
	ScreenName  string         `json:"screen_name"`
	Engagements []score.Ranked `json:"engagements"`
}

// RankReport summarizes per-user ranking latency.
type RankReport struct {
	Users int           `json:"users"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// RankAll ranks, for every stored user, the stored users they are connected
// to: anyone in their entourage or anyone who engaged with their posts.
// Each worker owns one scoring session so profile caches are never shared.
func RankAll(ctx context.Context, db *sqlitedb.DB, opts RankJobOptions) ([]UserRanking, RankReport, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Policy == nil {
		opts.Policy = score.LinearPolicy{W: score.DefaultWeights()}
	}
	ids, err := db.UserIDs(ctx)
	if err != nil {
		return nil, RankReport{}, err
	}
	stored := util.NewSet(ids...)
	out := make([]UserRanking, len(ids))
	total := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
	var mu sync.Mutex

	work := make(chan int)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for i := range ids {
			select {
			case work <- i:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return nil
	})
	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			sess := score.NewSession(db, score.WithFoldCase(opts.FoldCase))
			agg := interact.NewAggregator(db)
			hist := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
			defer func() {
				mu.Lock()
				total.Merge(hist)
				mu.Unlock()
			}()
			for i := range work {
				start := time.Now()
				r, err := rankOne(gCtx, db, sess, agg, stored, ids[i], opts)
				if err != nil {
					return err
				}
				out[i] = r
				_ = hist.RecordValue(time.Since(start).Microseconds())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RankReport{}, err
	}

	rep := RankReport{
		Users: len(ids),
		P50:   time.Duration(total.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(total.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(total.ValueAtQuantile(99)) * time.Microsecond,
		Max:   time.Duration(total.Max()) * time.Microsecond,
	}
	logging.Info("rank_done", map[string]any{"users": rep.Users, "p50": rep.P50.String(), "p99": rep.P99.String()})
	return out, rep, nil
}

func rankOne(ctx context.Context, db *sqlitedb.DB, sess *score.Session, agg *interact.Aggregator, stored util.Set[int64], id int64, opts RankJobOptions) (UserRanking, error) {
	u, err := db.UserByID(ctx, id)
	if err != nil {
		return UserRanking{}, err
	}
	p, err := sess.Profile(ctx, id)
	if err != nil {
		return UserRanking{}, err
	}
	pop, err := agg.Popularity(ctx, id)
	if err != nil {
		return UserRanking{}, err
	}
	cands := util.NewSet[int64]()
	for other := range p.Circle.Entourage {
		if stored.Has(other) {
			cands.Add(other)
		}
	}
	for _, e := range pop {
		if stored.Has(e.UserID) {
			cands.Add(e.UserID)
		}
	}
	ranked, err := sess.Rank(ctx, id, util.Sorted(cands), opts.Policy, score.RankOptions{Limit: opts.Limit})
	if err != nil {
		return UserRanking{}, err
	}
	return UserRanking{UserID: id, ScreenName: u.ScreenName, Engagements: ranked}, nil
}

// WriteEngagements writes rankings as a JSON object keyed by screen name.
func WriteEngagements(path string, rankings []UserRanking) error {
	byName := make(map[string][]score.Ranked, len(rankings))
	for _, r := range rankings {
		eng := r.Engagements
		if eng == nil {
			eng = []score.Ranked{}
		}
		byName[r.ScreenName] = eng
	}
	b, err := json.MarshalIndent(byName, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
