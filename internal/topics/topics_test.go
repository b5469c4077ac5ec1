package topics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitscan/internal/ingest"
	"twitscan/internal/model"
	"twitscan/internal/store/sqlitedb"
	"twitscan/internal/util"
)

func store(t *testing.T) *sqlitedb.DB {
	t.Helper()
	db, err := sqlitedb.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	g := ingest.New(db)
	ctx := context.Background()
	now := time.Now()
	_, err = g.IngestUser(ctx, model.RawUser{ID: 1, ScreenName: "u1", CreatedAt: now, Posts: []model.RawPost{
		{ID: 100, Text: "#rust #go", CreatedAt: now, Hashtags: []string{"rust", "go"}},
		{ID: 101, Text: "#rust again", CreatedAt: now, Hashtags: []string{"rust"}},
	}})
	require.NoError(t, err)
	_, err = g.IngestUser(ctx, model.RawUser{ID: 2, ScreenName: "u2", CreatedAt: now, Posts: []model.RawPost{
		{ID: 200, Text: "#Go #zig", CreatedAt: now, Hashtags: []string{"Go", "zig"}},
	}})
	require.NoError(t, err)
	_, err = g.IngestUser(ctx, model.RawUser{ID: 3, ScreenName: "quiet", CreatedAt: now})
	require.NoError(t, err)
	return db
}

func TestHashtagsScenario(t *testing.T) {
	x := NewExtractor(store(t), Options{})
	tags, err := x.Hashtags(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, util.Sorted(tags))
}

func TestCaseSensitivity(t *testing.T) {
	db := store(t)
	ctx := context.Background()

	exact := NewExtractor(db, Options{})
	common, err := exact.CommonHashtags(ctx, 1, 2)
	require.NoError(t, err)
	assert.Zero(t, common.Len())

	folded := NewExtractor(db, Options{FoldCase: true})
	common, err = folded.CommonHashtags(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, util.Sorted(common))

	posts, err := folded.PostsByHashtag(ctx, "#GO")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	posts, err = exact.PostsByHashtag(ctx, "rust")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestEmptyAndUnknown(t *testing.T) {
	x := NewExtractor(store(t), Options{})
	ctx := context.Background()

	tags, err := x.Hashtags(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, tags.Len())

	_, err = x.Hashtags(ctx, 404)
	assert.True(t, model.IsNotFound(err))
	_, err = x.CommonHashtags(ctx, 1, 404)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
