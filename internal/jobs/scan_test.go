package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"twitscan/internal/model"
	"twitscan/internal/store/sqlitedb"
	"twitscan/internal/xclient"
)

// fake fetcher serving canned accounts by id or handle
type fakeFetcher struct {
	users    map[int64]model.RawUser
	failures map[int64]int // transient failures before success
	calls    map[string]int
}

func (f *fakeFetcher) FetchUser(ctx context.Context, ref xclient.UserRef, opts xclient.FetchOptions) (model.RawUser, error) {
	f.calls[ref.String()]++
	for _, u := range f.users {
		if (ref.ID != 0 && u.ID == ref.ID) || (ref.ID == 0 && u.ScreenName == ref.ScreenName) {
			if f.failures[u.ID] > 0 {
				f.failures[u.ID]--
				return model.RawUser{}, errors.New("connection reset")
			}
			if u.Protected {
				return model.RawUser{}, &xclient.ProtectedError{ScreenName: u.ScreenName}
			}
			if opts.MaxFollowers > 0 && u.FollowersCount > opts.MaxFollowers {
				return model.RawUser{}, &xclient.TooManyFollowersError{ScreenName: u.ScreenName, Followers: u.FollowersCount, Max: opts.MaxFollowers}
			}
			return u, nil
		}
	}
	return model.RawUser{}, &xclient.APIError{Endpoint: "/users/show.json", Status: 404}
}

func newFake() *fakeFetcher {
	now := time.Now()
	return &fakeFetcher{
		users: map[int64]model.RawUser{
			1: {ID: 1, ScreenName: "main", CreatedAt: now, FollowersCount: 4, FollowerIDs: []int64{2, 3, 4, 5}},
			2: {ID: 2, ScreenName: "f2", CreatedAt: now},
			3: {ID: 3, ScreenName: "f3", CreatedAt: now, Protected: true},
			4: {ID: 4, ScreenName: "f4", CreatedAt: now},
			9: {ID: 9, ScreenName: "celebrity", CreatedAt: now, FollowersCount: 1000000},
		},
		failures: map[int64]int{4: 1},
		calls:    map[string]int{},
	}
}

func TestScanMainThenFollowers(t *testing.T) {
	db, err := sqlitedb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	f := newFake()
	s := NewScanner(f, db, ScanOptions{MaxFollowers: 100, MaxAttempts: 2})

	rep, err := s.Run(context.Background(), []string{"main", "celebrity"})
	if err != nil {
		t.Fatal(err)
	}
	// main, f2, f4 stored; f3 protected, celebrity too big; 5 unknown to the API
	if rep.Scanned != 3 || rep.Skipped != 3 || rep.Failed != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if f.calls["4"] != 2 {
		t.Fatalf("transient failure not retried: %v", f.calls)
	}
	if f.calls["3"] != 1 {
		t.Fatalf("permanent failure retried: %v", f.calls)
	}
	for _, id := range []int64{1, 2, 4} {
		if ok, _ := db.UserExists(context.Background(), id); !ok {
			t.Fatalf("user %d not stored", id)
		}
	}

	// second run fetches nothing new
	again, err := s.Run(context.Background(), []string{"main"})
	if err != nil {
		t.Fatal(err)
	}
	if again.Scanned != 0 || again.Known != 3 {
		t.Fatalf("rescan not idempotent: %+v", again)
	}
}

func TestScanFollowerLimit(t *testing.T) {
	db, err := sqlitedb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	f := newFake()
	f.failures = nil
	s := NewScanner(f, db, ScanOptions{FollowerLimit: 1, MaxAttempts: 1})
	rep, err := s.Run(context.Background(), []string{"main"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Scanned != 2 {
		t.Fatalf("expected main plus one follower, got %+v", rep)
	}
}

func TestScanCancelled(t *testing.T) {
	db, err := sqlitedb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewScanner(newFake(), db, ScanOptions{MaxAttempts: 3}).Run(ctx, []string{"main"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
