package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"twitscan/internal/model"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every statement against the store. The same methods run on
// the pool (DB embeds Queries) or inside a WithTx transaction.
type Queries struct{ q querier }

const userColumns = `user_id, screen_name, created_at, verified, favorites_count, status_count, friends_count, followers_count, picture_url`

// InsertUser stores u. It fails on a duplicate id; callers check first.
func (q *Queries) InsertUser(ctx context.Context, u model.User) error {
	_, err := q.q.ExecContext(ctx, `INSERT INTO user(`+userColumns+`) VALUES(?,?,?,?,?,?,?,?,?)`,
		u.ID, u.ScreenName, u.CreatedAt.Unix(), u.Verified, u.FavoritesCount, u.StatusCount,
		u.FriendsCount, u.FollowersCount, nullString(u.PictureURL))
	if err != nil {
		return fmt.Errorf("insert user %d: %w", u.ID, err)
	}
	return nil
}

// UserByID returns the stored user or a *model.NotFoundError.
func (q *Queries) UserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE user_id=?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, model.UserNotFound(id)
	}
	return u, err
}

// UserByScreenName matches the handle case-insensitively.
func (q *Queries) UserByScreenName(ctx context.Context, name string) (model.User, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE screen_name=? COLLATE NOCASE ORDER BY user_id LIMIT 1`, name)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, &model.NotFoundError{Kind: "user", Handle: name}
	}
	return u, err
}

func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := q.q.QueryRowContext(ctx, `SELECT 1 FROM user WHERE user_id=?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UserIDs lists every stored user id in ascending order.
func (q *Queries) UserIDs(ctx context.Context) ([]int64, error) {
	return q.ids(ctx, `SELECT user_id FROM user ORDER BY user_id`)
}

// FindUsers returns users whose handle contains fragment.
func (q *Queries) FindUsers(ctx context.Context, fragment string) ([]model.User, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+userColumns+` FROM user WHERE screen_name LIKE ? ORDER BY screen_name`, "%"+fragment+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanUser(s scanner) (model.User, error) {
	var u model.User
	var created int64
	var pic sql.NullString
	if err := s.Scan(&u.ID, &u.ScreenName, &created, &u.Verified, &u.FavoritesCount, &u.StatusCount,
		&u.FriendsCount, &u.FollowersCount, &pic); err != nil {
		return model.User{}, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	u.PictureURL = pic.String
	return u, nil
}

func (q *Queries) ids(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
