package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"twitscan/internal/model"
)

const postColumns = `status_id, user_id, text, created_at, favorite_count, retweet_count, in_reply_to_status_id, in_reply_to_user_id, is_retweet, retweeted_status_id, media_url`

func (q *Queries) InsertPost(ctx context.Context, p model.Post) error {
	_, err := q.q.ExecContext(ctx, `INSERT INTO status(`+postColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.Text, p.CreatedAt.Unix(), p.FavoriteCount, p.RetweetCount,
		nullInt(p.InReplyToStatusID), nullInt(p.InReplyToUserID), p.IsRetweet,
		nullInt(p.RetweetedStatusID), nullString(p.MediaURL))
	if err != nil {
		return fmt.Errorf("insert status %d: %w", p.ID, err)
	}
	return nil
}

func (q *Queries) InsertMentions(ctx context.Context, statusID int64, userIDs []int64) error {
	for _, uid := range userIDs {
		if _, err := q.q.ExecContext(ctx, `INSERT INTO mention(status_id, user_id) VALUES(?,?)`, statusID, uid); err != nil {
			return fmt.Errorf("insert mention on %d: %w", statusID, err)
		}
	}
	return nil
}

func (q *Queries) InsertHashtags(ctx context.Context, statusID int64, names []string) error {
	for _, n := range names {
		if _, err := q.q.ExecContext(ctx, `INSERT INTO hashtag(status_id, hashtag_name) VALUES(?,?)`, statusID, n); err != nil {
			return fmt.Errorf("insert hashtag on %d: %w", statusID, err)
		}
	}
	return nil
}

func (q *Queries) InsertLinks(ctx context.Context, statusID int64, urls []string) error {
	for _, u := range urls {
		if _, err := q.q.ExecContext(ctx, `INSERT INTO link(status_id, link) VALUES(?,?)`, statusID, u); err != nil {
			return fmt.Errorf("insert link on %d: %w", statusID, err)
		}
	}
	return nil
}

// PostByID returns the stored post or a *model.NotFoundError.
func (q *Queries) PostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM status WHERE status_id=?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, model.PostNotFound(id)
	}
	return p, err
}

// PostsByUser lists posts authored by userID, newest first.
func (q *Queries) PostsByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	return q.posts(ctx, `SELECT `+postColumns+` FROM status WHERE user_id=? ORDER BY created_at DESC, status_id DESC`, userID)
}

// FindPosts returns posts whose text contains fragment.
func (q *Queries) FindPosts(ctx context.Context, fragment string) ([]model.Post, error) {
	return q.posts(ctx, `SELECT `+postColumns+` FROM status WHERE text LIKE ? ORDER BY created_at DESC, status_id DESC`, "%"+fragment+"%")
}

// PostsByHashtag lists the distinct posts tagged with tag (exact match).
func (q *Queries) PostsByHashtag(ctx context.Context, tag string) ([]model.Post, error) {
	return q.posts(ctx, `SELECT `+postColumns+` FROM status WHERE status_id IN (SELECT status_id FROM hashtag WHERE hashtag_name=?) ORDER BY created_at DESC, status_id DESC`, tag)
}

// PostsByHashtagFold is PostsByHashtag ignoring ASCII case.
func (q *Queries) PostsByHashtagFold(ctx context.Context, tag string) ([]model.Post, error) {
	return q.posts(ctx, `SELECT `+postColumns+` FROM status WHERE status_id IN (SELECT status_id FROM hashtag WHERE hashtag_name=? COLLATE NOCASE) ORDER BY created_at DESC, status_id DESC`, tag)
}

// HashtagsByUser returns every hashtag occurrence across the user's posts.
func (q *Queries) HashtagsByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT h.hashtag_name FROM hashtag h JOIN status s ON s.status_id = h.status_id WHERE s.user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// MentionedBy returns the mentioned ids across the user's posts, one entry per mention row.
func (q *Queries) MentionedBy(ctx context.Context, userID int64) ([]int64, error) {
	return q.ids(ctx, `SELECT m.user_id FROM mention m JOIN status s ON s.status_id = m.status_id WHERE s.user_id=?`, userID)
}

// MentionAuthors returns, per mention of target, the author of the mentioning post.
func (q *Queries) MentionAuthors(ctx context.Context, target int64) ([]int64, error) {
	return q.ids(ctx, `SELECT s.user_id FROM mention m JOIN status s ON s.status_id = m.status_id WHERE m.user_id=?`, target)
}

func (q *Queries) posts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPost(s scanner) (model.Post, error) {
	var p model.Post
	var created int64
	var text, media sql.NullString
	var replyStatus, replyUser, retweeted sql.NullInt64
	if err := s.Scan(&p.ID, &p.UserID, &text, &created, &p.FavoriteCount, &p.RetweetCount,
		&replyStatus, &replyUser, &p.IsRetweet, &retweeted, &media); err != nil {
		return model.Post{}, err
	}
	p.Text = text.String
	p.CreatedAt = time.Unix(created, 0).UTC()
	p.InReplyToStatusID = intPtr(replyStatus)
	p.InReplyToUserID = intPtr(replyUser)
	p.RetweetedStatusID = intPtr(retweeted)
	p.MediaURL = media.String
	return p, nil
}
