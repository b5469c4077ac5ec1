package score

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitscan/internal/ingest"
	"twitscan/internal/interact"
	"twitscan/internal/model"
	"twitscan/internal/store/sqlitedb"
)

type fixture struct {
	db *sqlitedb.DB
	g  *ingest.Gateway
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlitedb.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	f := fixture{db: db, g: ingest.New(db)}
	now := time.Now()

	f.user(t, model.RawUser{ID: 1, ScreenName: "u1", CreatedAt: now,
		FriendIDs: []int64{10, 20}, FollowerIDs: []int64{20, 30},
		Posts: []model.RawPost{
			{ID: 100, Text: "@u2 #rust #go", CreatedAt: now, MentionIDs: []int64{2}, Hashtags: []string{"rust", "go"}},
			{ID: 101, Text: "#rust", CreatedAt: now, Hashtags: []string{"rust"}},
		}})
	f.user(t, model.RawUser{ID: 2, ScreenName: "u2", CreatedAt: now,
		FriendIDs: []int64{20, 40}, FollowerIDs: []int64{20},
		FavoritedIDs: []int64{100, 9999},
		Posts: []model.RawPost{
			{ID: 200, Text: "#go", CreatedAt: now, Hashtags: []string{"go"}},
		}})
	f.user(t, model.RawUser{ID: 3, ScreenName: "empty", CreatedAt: now})
	return f
}

func (f fixture) user(t *testing.T, raw model.RawUser) {
	t.Helper()
	_, err := f.g.IngestUser(context.Background(), raw)
	require.NoError(t, err)
}

func TestScoreVector(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	v, err := s.Score(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, v.CommonEntourage)
	assert.Equal(t, 3, v.EntourageSizeA)
	assert.Equal(t, 2, v.EntourageSizeB)
	assert.InDelta(t, 0.4, v.EntourageRatio, 1e-9)
	assert.Equal(t, 1, v.CommonFriends)
	assert.Equal(t, 1, v.CommonFollowers)

	assert.Equal(t, 1, v.CommonHashtags)
	assert.InDelta(t, 2.0/3.0, v.HashtagRatio, 1e-9)

	assert.Equal(t, 1, v.MentionsAB)
	assert.Equal(t, 0, v.MentionsBA)
	assert.Equal(t, 1, v.TotalMentions)
	assert.Equal(t, interact.Counts{}, v.AB)
	assert.Equal(t, interact.Counts{Favorites: 1}, v.BA, "orphan favorite excluded")
	assert.Equal(t, 1, v.TotalFavorites)
	assert.Zero(t, v.TotalRetweets+v.TotalComments)
}

func TestScoreSymmetricOverlap(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	ctx := context.Background()
	ab, err := s.Score(ctx, 1, 2)
	require.NoError(t, err)
	ba, err := s.Score(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, ab.CommonEntourage, ba.CommonEntourage)
	assert.Equal(t, ab.EntourageRatio, ba.EntourageRatio)
	assert.Equal(t, ab.HashtagRatio, ba.HashtagRatio)
	assert.Equal(t, ab.TotalMentions, ba.TotalMentions)
	assert.Equal(t, ab.AB, ba.BA)
}

func TestScoreBounds(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	ctx := context.Background()
	for _, a := range []int64{1, 2, 3} {
		for _, b := range []int64{1, 2, 3} {
			v, err := s.Score(ctx, a, b)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v.EntourageRatio, 0.0)
			assert.LessOrEqual(t, v.EntourageRatio, 1.0)
			assert.GreaterOrEqual(t, v.HashtagRatio, 0.0)
			assert.LessOrEqual(t, v.HashtagRatio, 1.0)
		}
	}
}

func TestScoreSelf(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	v, err := s.Score(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.EntourageRatio)
	assert.Equal(t, 1.0, v.HashtagRatio)
	assert.Zero(t, v.TotalMentions)
	assert.Zero(t, v.TotalFavorites+v.TotalRetweets+v.TotalComments)
}

func TestScoreEmptyUsers(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	v, err := s.Score(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.Zero(t, v.EntourageRatio)
	assert.Zero(t, v.HashtagRatio)
}

func TestScoreUnknownUser(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	_, err := s.Score(context.Background(), 1, 77)
	require.Error(t, err)
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(77), nf.ID)
	assert.Zero(t, s.Cache().Len(), "nothing cached before validation")
}

func TestCacheReusesAndGoesStale(t *testing.T) {
	f := newFixture(t)
	c := NewCache()
	s := NewSession(f.db, WithCache(c))
	ctx := context.Background()

	_, err := s.Score(ctx, 1, 2)
	require.NoError(t, err)
	_, err = s.Score(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, CacheStats{Hits: 1, Misses: 3}, c.Stats())

	// a committed write makes every entry stale
	f.user(t, model.RawUser{ID: 4, ScreenName: "late", CreatedAt: time.Now(), FriendIDs: []int64{10}})
	_, err = s.Score(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Stats().Misses)

	c.Invalidate(1)
	assert.Equal(t, 3, c.Len())
	c.Reset()
	assert.Zero(t, c.Len())
	assert.Equal(t, CacheStats{}, c.Stats())
}

func TestSharedCacheKeepsFoldingApart(t *testing.T) {
	f := newFixture(t)
	f.user(t, model.RawUser{ID: 5, ScreenName: "mixed", CreatedAt: time.Now(), Posts: []model.RawPost{
		{ID: 500, Text: "#Go #go", CreatedAt: time.Now(), Hashtags: []string{"Go", "go"}},
	}})
	c := NewCache()
	ctx := context.Background()

	exact, err := NewSession(f.db, WithCache(c)).Profile(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, exact.Hashtags.Len())

	folded, err := NewSession(f.db, WithCache(c), WithFoldCase(true)).Profile(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, folded.Hashtags.Len())
	assert.Equal(t, CacheStats{Misses: 2}, c.Stats())
}

func TestRank(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.db)
	ranked, err := s.Rank(context.Background(), 1, []int64{1, 2, 3}, LinearPolicy{W: DefaultWeights()}, RankOptions{})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].UserB)
	assert.Equal(t, int64(3), ranked[1].UserB)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)

	withSelf, err := s.Rank(context.Background(), 1, []int64{1, 2, 3}, LinearPolicy{W: DefaultWeights()}, RankOptions{IncludeSelf: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, withSelf, 1)
	assert.Equal(t, int64(2), withSelf[0].UserB)
}
