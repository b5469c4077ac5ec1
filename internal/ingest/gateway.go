// Package ingest writes scanned users and posts into the store. Every call is
// idempotent: a record whose id is already stored is returned unchanged.
package ingest

import (
	"context"
	"errors"
	"time"

	"twitscan/internal/logging"
	"twitscan/internal/metrics"
	"twitscan/internal/model"
	"twitscan/internal/store/sqlitedb"
)

// ErrMissingID rejects raw records without an identity.
var ErrMissingID = errors.New("ingest: record has no id")

// errStored aborts a transaction that found the record already present.
var errStored = errors.New("already stored")

type Gateway struct {
	db *sqlitedb.DB
}

func New(db *sqlitedb.DB) *Gateway { return &Gateway{db: db} }

// IngestPost stores raw with its mentions, hashtags and links in one
// transaction. If the post id is already stored the stored row is returned.
func (g *Gateway) IngestPost(ctx context.Context, raw model.RawPost) (model.Post, error) {
	if raw.ID == 0 {
		return model.Post{}, ErrMissingID
	}
	start := time.Now()
	var out model.Post
	err := g.db.WithTx(ctx, func(q *sqlitedb.Queries) error {
		p, inserted, err := ingestPost(ctx, q, raw)
		out = p
		if err != nil {
			return err
		}
		if !inserted {
			return errStored
		}
		return nil
	})
	switch {
	case errors.Is(err, errStored):
		metrics.IncDuplicate("status")
		return out, nil
	case err != nil:
		metrics.IngestErrors.Inc()
		return model.Post{}, err
	}
	metrics.IngestedPosts.Inc()
	metrics.ObserveIngestDuration(start)
	return out, nil
}

// IngestUser stores the user, its entourage, its posts and its interactions
// in a single transaction. A user already stored is returned as is and
// nothing else in raw is written.
func (g *Gateway) IngestUser(ctx context.Context, raw model.RawUser) (model.User, error) {
	if raw.ID == 0 {
		return model.User{}, ErrMissingID
	}
	for _, p := range append(append([]model.RawPost(nil), raw.Posts...), raw.Favorites...) {
		if p.ID == 0 {
			return model.User{}, ErrMissingID
		}
	}
	start := time.Now()
	var (
		out   model.User
		posts int
	)
	err := g.db.WithTx(ctx, func(q *sqlitedb.Queries) error {
		stored, err := q.UserByID(ctx, raw.ID)
		if err == nil {
			out = stored
			return errStored
		}
		if !model.IsNotFound(err) {
			return err
		}
		if err := q.InsertUser(ctx, raw.User()); err != nil {
			return err
		}
		if err := q.InsertEntourage(ctx, BuildEntourage(raw.ID, raw.FriendIDs, raw.FollowerIDs)); err != nil {
			return err
		}
		for _, rp := range raw.Posts {
			if rp.UserID == 0 {
				rp.UserID = raw.ID
			}
			_, inserted, err := ingestPost(ctx, q, rp)
			if err != nil {
				return err
			}
			if inserted {
				posts++
			}
		}
		for _, rp := range raw.Favorites {
			_, inserted, err := ingestPost(ctx, q, rp)
			if err != nil {
				return err
			}
			if inserted {
				posts++
			}
		}
		if err := q.InsertInteractions(ctx, BuildInteractions(raw)); err != nil {
			return err
		}
		out, err = q.UserByID(ctx, raw.ID)
		return err
	})
	switch {
	case errors.Is(err, errStored):
		metrics.IncDuplicate("user")
		logging.Debug("user_already_stored", map[string]any{"user_id": raw.ID})
		return out, nil
	case err != nil:
		metrics.IngestErrors.Inc()
		logging.Error("user_ingest_failed", map[string]any{"user_id": raw.ID, "error": err.Error()})
		return model.User{}, err
	}
	metrics.IngestedUsers.Inc()
	metrics.IngestedPosts.Add(float64(posts))
	metrics.ObserveIngestDuration(start)
	logging.Info("user_ingested", map[string]any{"user_id": raw.ID, "screen_name": raw.ScreenName, "posts": posts})
	return out, nil
}

// ingestPost writes one post and its children on q. inserted is false when
// the post was already stored; the stored row is returned in that case.
func ingestPost(ctx context.Context, q *sqlitedb.Queries, raw model.RawPost) (model.Post, bool, error) {
	if raw.ID == 0 {
		return model.Post{}, false, ErrMissingID
	}
	stored, err := q.PostByID(ctx, raw.ID)
	if err == nil {
		return stored, false, nil
	}
	if !model.IsNotFound(err) {
		return model.Post{}, false, err
	}
	p := raw.Post()
	if err := q.InsertPost(ctx, p); err != nil {
		return model.Post{}, false, err
	}
	if err := q.InsertMentions(ctx, p.ID, raw.MentionIDs); err != nil {
		return model.Post{}, false, err
	}
	if err := q.InsertHashtags(ctx, p.ID, nonEmpty(raw.Hashtags)); err != nil {
		return model.Post{}, false, err
	}
	if err := q.InsertLinks(ctx, p.ID, nonEmpty(raw.URLs)); err != nil {
		return model.Post{}, false, err
	}
	stored, err = q.PostByID(ctx, p.ID)
	return stored, err == nil, err
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
