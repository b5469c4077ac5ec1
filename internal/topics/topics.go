// Package topics derives a user's hashtag vocabulary from their stored posts.
package topics

import (
	"context"
	"fmt"
	"strings"

	"twitscan/internal/model"
	"twitscan/internal/util"
)

type Store interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	HashtagsByUser(ctx context.Context, userID int64) ([]string, error)
	PostsByHashtag(ctx context.Context, tag string) ([]model.Post, error)
	PostsByHashtagFold(ctx context.Context, tag string) ([]model.Post, error)
}

type Options struct {
	// FoldCase lowercases hashtags so #Go and #go count as one topic.
	FoldCase bool
}

type Extractor struct {
	store Store
	opts  Options
}

func NewExtractor(s Store, opts Options) *Extractor { return &Extractor{store: s, opts: opts} }

// Hashtags returns the distinct hashtags over every stored post of the user.
func (e *Extractor) Hashtags(ctx context.Context, userID int64) (util.Set[string], error) {
	ok, err := e.store.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("hashtags of %d: %w", userID, err)
	}
	if !ok {
		return nil, model.UserNotFound(userID)
	}
	names, err := e.store.HashtagsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("hashtags of %d: %w", userID, err)
	}
	out := util.NewSet[string]()
	for _, n := range names {
		out.Add(e.normalize(n))
	}
	return out, nil
}

func (e *Extractor) CommonHashtags(ctx context.Context, a, b int64) (util.Set[string], error) {
	ha, err := e.Hashtags(ctx, a)
	if err != nil {
		return nil, err
	}
	hb, err := e.Hashtags(ctx, b)
	if err != nil {
		return nil, err
	}
	return util.Intersect(ha, hb), nil
}

// PostsByHashtag lists stored posts tagged with tag. A leading '#' is ignored.
// With FoldCase set the match ignores case.
func (e *Extractor) PostsByHashtag(ctx context.Context, tag string) ([]model.Post, error) {
	tag = strings.TrimPrefix(tag, "#")
	if e.opts.FoldCase {
		return e.store.PostsByHashtagFold(ctx, tag)
	}
	return e.store.PostsByHashtag(ctx, tag)
}

func (e *Extractor) normalize(tag string) string {
	if e.opts.FoldCase {
		return strings.ToLower(tag)
	}
	return tag
}
