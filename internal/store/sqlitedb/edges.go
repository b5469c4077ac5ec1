package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"twitscan/internal/model"
)

// InsertEntourage stores the edges of one subject. The unique index on
// (user_id, friend_follower_id) rejects a second row for the same pair.
func (q *Queries) InsertEntourage(ctx context.Context, edges []model.Entourage) error {
	for _, e := range edges {
		if !e.Friend && !e.Follower {
			return fmt.Errorf("entourage %d->%d: neither friend nor follower", e.UserID, e.FriendFollowerID)
		}
		if _, err := q.q.ExecContext(ctx, `INSERT INTO friend(user_id, friend_follower_id, friend, follower) VALUES(?,?,?,?)`,
			e.UserID, e.FriendFollowerID, e.Friend, e.Follower); err != nil {
			return fmt.Errorf("insert entourage %d->%d: %w", e.UserID, e.FriendFollowerID, err)
		}
	}
	return nil
}

// EntourageOf lists the subject's edges ordered by other-party id.
func (q *Queries) EntourageOf(ctx context.Context, userID int64) ([]model.Entourage, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT entourage_id, user_id, friend_follower_id, friend, follower FROM friend WHERE user_id=? ORDER BY friend_follower_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Entourage
	for rows.Next() {
		var e model.Entourage
		if err := rows.Scan(&e.ID, &e.UserID, &e.FriendFollowerID, &e.Friend, &e.Follower); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *Queries) InsertInteractions(ctx context.Context, items []model.Interaction) error {
	for _, it := range items {
		if _, err := q.q.ExecContext(ctx, `INSERT INTO interaction(user_id, status_id, fav, retweet, comment) VALUES(?,?,?,?,?)`,
			it.UserID, it.StatusID, it.Fav, it.Retweet, it.Comment); err != nil {
			return fmt.Errorf("insert interaction %d on %d: %w", it.UserID, it.StatusID, err)
		}
	}
	return nil
}

// InteractionTarget is an interaction row with the owner of its post resolved.
// Orphan is set when the post is not stored.
type InteractionTarget struct {
	model.Interaction
	OwnerID int64
	Orphan  bool
}

// InteractionsBy lists the user's interactions, resolving each target post's owner.
func (q *Queries) InteractionsBy(ctx context.Context, userID int64) ([]InteractionTarget, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT i.interaction_id, i.user_id, i.status_id, i.fav, i.retweet, i.comment, s.user_id
		FROM interaction i LEFT JOIN status s ON s.status_id = i.status_id
		WHERE i.user_id=? ORDER BY i.status_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InteractionTarget
	for rows.Next() {
		var t InteractionTarget
		var owner sql.NullInt64
		if err := rows.Scan(&t.ID, &t.UserID, &t.StatusID, &t.Fav, &t.Retweet, &t.Comment, &owner); err != nil {
			return nil, err
		}
		t.OwnerID = owner.Int64
		t.Orphan = !owner.Valid
		out = append(out, t)
	}
	return out, rows.Err()
}

// InteractionsOn lists interactions on posts owned by ownerID.
func (q *Queries) InteractionsOn(ctx context.Context, ownerID int64) ([]model.Interaction, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT i.interaction_id, i.user_id, i.status_id, i.fav, i.retweet, i.comment
		FROM interaction i JOIN status s ON s.status_id = i.status_id
		WHERE s.user_id=? ORDER BY i.user_id, i.status_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Interaction
	for rows.Next() {
		var it model.Interaction
		if err := rows.Scan(&it.ID, &it.UserID, &it.StatusID, &it.Fav, &it.Retweet, &it.Comment); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
