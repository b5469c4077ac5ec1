package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding scanned users, posts and their edges.
// Writes go through WithTx one at a time; reads run on the pool.
type DB struct {
	*Queries
	sql *sql.DB
	wmu sync.Mutex
	gen atomic.Int64
}

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory database pinned to a single connection.
func Open(path string) (*DB, error) {
	dsn, memory := buildDSN(path)
	d, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		d.SetMaxOpenConns(1)
	}
	db := &DB{Queries: &Queries{q: d}, sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func buildDSN(path string) (string, bool) {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		return "file::memory:?" + pragmas, true
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas + "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate", false
}

func (d *DB) Close() error { return d.sql.Close() }

// Generation counts committed write transactions. Readers that memoize
// derived data compare it to detect that the store changed underneath them.
func (d *DB) Generation() int64 { return d.gen.Load() }

// WithTx runs fn inside a write transaction. Any error or panic rolls the
// whole transaction back; nothing fn wrote becomes visible.
func (d *DB) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	d.wmu.Lock()
	defer d.wmu.Unlock()

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Queries{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	d.gen.Add(1)
	return nil
}

func (d *DB) migrate() error {
	_, err := d.sql.Exec(schema)
	return err
}

// status.user_id and interaction.status_id carry no foreign key: the scanned
// graph is partial and both may point outside the store.
const schema = `
CREATE TABLE IF NOT EXISTS user (
  user_id INTEGER PRIMARY KEY,
  screen_name TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  verified INTEGER NOT NULL DEFAULT 0,
  favorites_count INTEGER NOT NULL DEFAULT 0,
  status_count INTEGER NOT NULL DEFAULT 0,
  friends_count INTEGER NOT NULL DEFAULT 0,
  followers_count INTEGER NOT NULL DEFAULT 0,
  picture_url TEXT
);
CREATE INDEX IF NOT EXISTS idx_user_screen_name ON user(screen_name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS status (
  status_id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL,
  text TEXT,
  created_at INTEGER NOT NULL,
  favorite_count INTEGER NOT NULL DEFAULT 0,
  retweet_count INTEGER NOT NULL DEFAULT 0,
  in_reply_to_status_id INTEGER,
  in_reply_to_user_id INTEGER,
  is_retweet INTEGER NOT NULL DEFAULT 0,
  retweeted_status_id INTEGER,
  media_url TEXT
);
CREATE INDEX IF NOT EXISTS idx_status_user ON status(user_id);

CREATE TABLE IF NOT EXISTS mention (
  mention_id INTEGER PRIMARY KEY AUTOINCREMENT,
  status_id INTEGER NOT NULL REFERENCES status(status_id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mention_status ON mention(status_id);
CREATE INDEX IF NOT EXISTS idx_mention_user ON mention(user_id);

CREATE TABLE IF NOT EXISTS hashtag (
  hashtag_id INTEGER PRIMARY KEY AUTOINCREMENT,
  status_id INTEGER NOT NULL REFERENCES status(status_id) ON DELETE CASCADE,
  hashtag_name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hashtag_status ON hashtag(status_id);
CREATE INDEX IF NOT EXISTS idx_hashtag_name ON hashtag(hashtag_name);

CREATE TABLE IF NOT EXISTS link (
  link_id INTEGER PRIMARY KEY AUTOINCREMENT,
  status_id INTEGER NOT NULL REFERENCES status(status_id) ON DELETE CASCADE,
  link TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_link_status ON link(status_id);

CREATE TABLE IF NOT EXISTS friend (
  entourage_id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES user(user_id) ON DELETE CASCADE,
  friend_follower_id INTEGER NOT NULL,
  friend INTEGER NOT NULL,
  follower INTEGER NOT NULL,
  CHECK (friend OR follower),
  UNIQUE (user_id, friend_follower_id)
);

CREATE TABLE IF NOT EXISTS interaction (
  interaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES user(user_id) ON DELETE CASCADE,
  status_id INTEGER NOT NULL,
  fav INTEGER NOT NULL DEFAULT 0,
  retweet INTEGER NOT NULL DEFAULT 0,
  comment INTEGER NOT NULL DEFAULT 0,
  UNIQUE (user_id, status_id)
);
CREATE INDEX IF NOT EXISTS idx_interaction_status ON interaction(status_id);
`
