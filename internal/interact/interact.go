// Package interact counts the mentions, favorites, reposts and replies one
// stored user directs at another.
package interact

import (
	"context"
	"fmt"
	"sort"

	"twitscan/internal/logging"
	"twitscan/internal/model"
	"twitscan/internal/store/sqlitedb"
)

type Store interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	InteractionsBy(ctx context.Context, userID int64) ([]sqlitedb.InteractionTarget, error)
	InteractionsOn(ctx context.Context, ownerID int64) ([]model.Interaction, error)
	MentionedBy(ctx context.Context, userID int64) ([]int64, error)
	MentionAuthors(ctx context.Context, target int64) ([]int64, error)
}

// Counts is one direction of favorite/repost/reply engagement.
type Counts struct {
	Favorites int `json:"favorites"`
	Retweets  int `json:"retweets"`
	Comments  int `json:"comments"`
}

func (c Counts) Add(o Counts) Counts {
	return Counts{Favorites: c.Favorites + o.Favorites, Retweets: c.Retweets + o.Retweets, Comments: c.Comments + o.Comments}
}

func (c Counts) Total() int { return c.Favorites + c.Retweets + c.Comments }

func (c *Counts) record(it model.Interaction) {
	if it.Fav {
		c.Favorites++
	}
	if it.Retweet {
		c.Retweets++
	}
	if it.Comment {
		c.Comments++
	}
}

// Summary is everything one actor directed at others, keyed by target user.
type Summary struct {
	Toward        map[int64]Counts
	Mentioned     map[int64]int
	TotalMentions int
	// Orphans counts interactions whose post is not stored.
	Orphans int
}

func (s Summary) TowardUser(target int64) Counts { return s.Toward[target] }

func (s Summary) MentionsOf(target int64) int { return s.Mentioned[target] }

type Aggregator struct {
	store Store
}

func NewAggregator(s Store) *Aggregator { return &Aggregator{store: s} }

// Summarize reads the actor's interactions and mentions once.
func (a *Aggregator) Summarize(ctx context.Context, actor int64) (Summary, error) {
	ok, err := a.store.UserExists(ctx, actor)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %d: %w", actor, err)
	}
	if !ok {
		return Summary{}, model.UserNotFound(actor)
	}
	rows, err := a.store.InteractionsBy(ctx, actor)
	if err != nil {
		return Summary{}, fmt.Errorf("interactions by %d: %w", actor, err)
	}
	s := Summary{Toward: make(map[int64]Counts), Mentioned: make(map[int64]int)}
	for _, r := range rows {
		if r.Orphan {
			s.Orphans++
			continue
		}
		c := s.Toward[r.OwnerID]
		c.record(r.Interaction)
		s.Toward[r.OwnerID] = c
	}
	if s.Orphans > 0 {
		logging.Debug("orphan_interactions_skipped", map[string]any{"user_id": actor, "count": s.Orphans})
	}
	mentioned, err := a.store.MentionedBy(ctx, actor)
	if err != nil {
		return Summary{}, fmt.Errorf("mentions by %d: %w", actor, err)
	}
	for _, id := range mentioned {
		s.Mentioned[id]++
	}
	s.TotalMentions = len(mentioned)
	return s, nil
}

// Interactions counts what actor favorited, reposted and replied to among
// target's stored posts. A row with several flags counts once per flag.
func (a *Aggregator) Interactions(ctx context.Context, actor, target int64) (Counts, error) {
	s, err := a.Summarize(ctx, actor)
	if err != nil {
		return Counts{}, err
	}
	return s.TowardUser(target), nil
}

// Mentions counts mentions of target across the actor's posts.
func (a *Aggregator) Mentions(ctx context.Context, actor, target int64) (int, error) {
	s, err := a.Summarize(ctx, actor)
	if err != nil {
		return 0, err
	}
	return s.MentionsOf(target), nil
}

func (a *Aggregator) TotalMentions(ctx context.Context, actor int64) (int, error) {
	s, err := a.Summarize(ctx, actor)
	if err != nil {
		return 0, err
	}
	return s.TotalMentions, nil
}

// Engagement is one user's activity toward a target.
type Engagement struct {
	UserID   int64 `json:"user_id"`
	Counts          // fav, retweet, comment on the target's posts
	Mentions int    `json:"mentions"`
}

// Popularity lists, per acting user, what they directed at target's stored
// posts plus how often they mentioned target. Self activity is excluded.
func (a *Aggregator) Popularity(ctx context.Context, target int64) ([]Engagement, error) {
	on, err := a.store.InteractionsOn(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("interactions on %d: %w", target, err)
	}
	authors, err := a.store.MentionAuthors(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("mentions of %d: %w", target, err)
	}
	by := make(map[int64]*Engagement)
	get := func(id int64) *Engagement {
		e, ok := by[id]
		if !ok {
			e = &Engagement{UserID: id}
			by[id] = e
		}
		return e
	}
	for _, it := range on {
		if it.UserID == target {
			continue
		}
		get(it.UserID).record(it)
	}
	for _, id := range authors {
		if id == target {
			continue
		}
		get(id).Mentions++
	}
	out := make([]Engagement, 0, len(by))
	for _, e := range by {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
