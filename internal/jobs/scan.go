package jobs

import (
	"context"
	"errors"
	"time"

	"twitscan/internal/ingest"
	"twitscan/internal/logging"
	"twitscan/internal/model"
	"twitscan/internal/store/sqlitedb"
	"twitscan/internal/util"
	"twitscan/internal/xclient"
)

// Fetcher pulls one account from the remote API.
type Fetcher interface {
	FetchUser(ctx context.Context, ref xclient.UserRef, opts xclient.FetchOptions) (model.RawUser, error)
}

type ScanOptions struct {
	MaxPosts      int
	MaxFollowers  int
	FollowerLimit int
	MaxAttempts   int
	RetryDelay    time.Duration
	SkipFavorites bool
}

// ScanReport counts what one scan run did.
type ScanReport struct {
	Scanned int `json:"scanned"`
	Known   int `json:"known"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Scanner fetches main accounts, then their followers, into the store.
// Retries live here; the gateway underneath never retries.
type Scanner struct {
	fetch Fetcher
	gw    *ingest.Gateway
	db    *sqlitedb.DB
	opts  ScanOptions
}

func NewScanner(f Fetcher, db *sqlitedb.DB, opts ScanOptions) *Scanner {
	return &Scanner{fetch: f, gw: ingest.New(db), db: db, opts: opts}
}

// Run scans every main account by handle, then up to FollowerLimit of each
// main account's followers that are not stored yet. Main accounts over
// MaxFollowers and protected accounts are skipped, not failed.
func (s *Scanner) Run(ctx context.Context, screenNames []string) (ScanReport, error) {
	var rep ScanReport
	var mains []int64
	for _, name := range screenNames {
		if u, err := s.db.UserByScreenName(ctx, name); err == nil {
			rep.Known++
			mains = append(mains, u.ID)
			continue
		} else if !model.IsNotFound(err) {
			return rep, err
		}
		u, err := s.scanOne(ctx, xclient.UserRef{ScreenName: name}, s.opts.MaxFollowers, &rep)
		if err != nil {
			return rep, err
		}
		if u != nil {
			mains = append(mains, u.ID)
		}
	}

	for _, id := range mains {
		edges, err := s.db.EntourageOf(ctx, id)
		if err != nil {
			return rep, err
		}
		n := 0
		for _, e := range edges {
			if !e.Follower {
				continue
			}
			if s.opts.FollowerLimit > 0 && n >= s.opts.FollowerLimit {
				break
			}
			n++
			ok, err := s.db.UserExists(ctx, e.FriendFollowerID)
			if err != nil {
				return rep, err
			}
			if ok {
				rep.Known++
				continue
			}
			if _, err := s.scanOne(ctx, xclient.UserRef{ID: e.FriendFollowerID}, 0, &rep); err != nil {
				return rep, err
			}
		}
	}
	logging.Info("scan_done", map[string]any{"scanned": rep.Scanned, "known": rep.Known, "skipped": rep.Skipped, "failed": rep.Failed})
	return rep, nil
}

// scanOne fetches and ingests one account. It returns a nil user and nil
// error when the account was skipped or failed after every attempt; only
// context cancellation and store errors abort the run.
func (s *Scanner) scanOne(ctx context.Context, ref xclient.UserRef, maxFollowers int, rep *ScanReport) (*model.User, error) {
	opts := xclient.FetchOptions{MaxPosts: s.opts.MaxPosts, MaxFollowers: maxFollowers, SkipFavorites: s.opts.SkipFavorites}
	raw, err := util.RetryWithDelay(ctx, s.opts.MaxAttempts, s.opts.RetryDelay, xclient.IsPermanent,
		func(ctx context.Context) (model.RawUser, error) {
			return s.fetch.FetchUser(ctx, ref, opts)
		})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case xclient.IsPermanent(err):
		rep.Skipped++
		logging.Warn("scan_skip", map[string]any{"user": ref.String(), "reason": err.Error()})
		return nil, nil
	default:
		rep.Failed++
		logging.Error("scan_fetch_failed", map[string]any{"user": ref.String(), "error": err.Error()})
		return nil, nil
	}
	u, err := s.gw.IngestUser(ctx, raw)
	if err != nil {
		return nil, err
	}
	rep.Scanned++
	return &u, nil
}
