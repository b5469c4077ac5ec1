// Package score computes pairwise proximity between stored users.
//
// A Session owns a profile cache for one batch run: the same anchor is
// usually compared against many counterparts, so each user's entourage,
// hashtags and activity are read once. Sessions are not safe for concurrent
// use; run one per goroutine.
package score

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"twitscan/internal/graph"
	"twitscan/internal/interact"
	"twitscan/internal/metrics"
	"twitscan/internal/model"
	"twitscan/internal/topics"
	"twitscan/internal/util"
)

// Store is everything a session reads. *sqlitedb.DB satisfies it.
type Store interface {
	graph.Store
	topics.Store
	interact.Store
	Generation() int64
}

type Option func(*Session)

// WithFoldCase makes hashtag comparison case-insensitive.
func WithFoldCase(fold bool) Option { return func(s *Session) { s.fold = fold } }

// WithCache uses c instead of a fresh cache. Sessions sharing c must run on
// the same goroutine.
func WithCache(c *Cache) Option { return func(s *Session) { s.cache = c } }

type Session struct {
	id        string
	store     Store
	fold      bool
	resolver  *graph.Resolver
	extractor *topics.Extractor
	agg       *interact.Aggregator
	cache     *Cache
}

func NewSession(store Store, opts ...Option) *Session {
	s := &Session{id: uuid.NewString(), store: store}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		s.cache = NewCache()
	}
	s.resolver = graph.NewResolver(store)
	s.extractor = topics.NewExtractor(store, topics.Options{FoldCase: s.fold})
	s.agg = interact.NewAggregator(store)
	return s
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Cache() *Cache { return s.cache }

// Profile returns the user's cached profile, reading it from the store when
// absent or stale.
func (s *Session) Profile(ctx context.Context, id int64) (Profile, error) {
	gen := s.store.Generation()
	if p, ok := s.cache.Get(id, gen, s.fold); ok {
		metrics.IncCacheHit()
		return p, nil
	}
	metrics.IncCacheMiss()
	c, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	tags, err := s.extractor.Hashtags(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	act, err := s.agg.Summarize(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{Circle: c, Hashtags: tags, Activity: act}
	s.cache.Put(id, gen, s.fold, p)
	return p, nil
}

// Score returns the proximity vector of a and b. Both must be stored users.
func (s *Session) Score(ctx context.Context, a, b int64) (Vector, error) {
	start := time.Now()
	for _, id := range []int64{a, b} {
		ok, err := s.store.UserExists(ctx, id)
		if err != nil {
			return Vector{}, fmt.Errorf("score %d/%d: %w", a, b, err)
		}
		if !ok {
			return Vector{}, model.UserNotFound(id)
		}
	}
	pa, err := s.Profile(ctx, a)
	if err != nil {
		return Vector{}, err
	}
	pb, err := s.Profile(ctx, b)
	if err != nil {
		return Vector{}, err
	}
	v := compare(a, b, pa, pb)
	metrics.ScoreCalls.Inc()
	metrics.ObserveScoreDuration(start)
	return v, nil
}

func compare(a, b int64, pa, pb Profile) Vector {
	v := Vector{UserA: a, UserB: b}

	v.CommonEntourage = util.Intersect(pa.Circle.Entourage, pb.Circle.Entourage).Len()
	v.CommonFriends = util.Intersect(pa.Circle.Friends, pb.Circle.Friends).Len()
	v.CommonFollowers = util.Intersect(pa.Circle.Followers, pb.Circle.Followers).Len()
	v.EntourageSizeA = pa.Circle.Entourage.Len()
	v.EntourageSizeB = pb.Circle.Entourage.Len()
	v.EntourageRatio = ratio(v.CommonEntourage, v.EntourageSizeA, v.EntourageSizeB)

	v.CommonHashtags = util.Intersect(pa.Hashtags, pb.Hashtags).Len()
	v.HashtagSizeA = pa.Hashtags.Len()
	v.HashtagSizeB = pb.Hashtags.Len()
	v.HashtagRatio = ratio(v.CommonHashtags, v.HashtagSizeA, v.HashtagSizeB)

	v.MentionsAB = pa.Activity.MentionsOf(b)
	v.AB = pa.Activity.TowardUser(b)
	// a self comparison is one relation, not two
	if a != b {
		v.MentionsBA = pb.Activity.MentionsOf(a)
		v.BA = pb.Activity.TowardUser(a)
	}
	v.TotalMentions = v.MentionsAB + v.MentionsBA
	total := v.AB.Add(v.BA)
	v.TotalFavorites, v.TotalRetweets, v.TotalComments = total.Favorites, total.Retweets, total.Comments
	return v
}

// Ranked is one counterpart scored against an anchor.
type Ranked struct {
	Vector
	Score float64 `json:"score"`
}

type RankOptions struct {
	IncludeSelf bool
	// Limit keeps the top N; zero keeps all.
	Limit int
}

// Rank scores anchor against each candidate and sorts by policy value,
// highest first. Ties keep candidate id order.
func (s *Session) Rank(ctx context.Context, anchor int64, candidates []int64, p Policy, opts RankOptions) ([]Ranked, error) {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		if c == anchor && !opts.IncludeSelf {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.Score(ctx, anchor, c)
		if err != nil {
			return nil, err
		}
		out = append(out, Ranked{Vector: v, Score: p.Apply(v)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserB < out[j].UserB
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
