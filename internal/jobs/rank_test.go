package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"twitscan/internal/ingest"
	"twitscan/internal/model"
	"twitscan/internal/score"
	"twitscan/internal/store/sqlitedb"
)

func seededDB(t *testing.T) *sqlitedb.DB {
	t.Helper()
	db, err := sqlitedb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	g := ingest.New(db)
	ctx := context.Background()
	now := time.Now()
	users := []model.RawUser{
		{ID: 1, ScreenName: "hub", CreatedAt: now, FollowerIDs: []int64{2, 3}, FriendIDs: []int64{50},
			Posts: []model.RawPost{{ID: 100, Text: "#go", CreatedAt: now, Hashtags: []string{"go"}}}},
		{ID: 2, ScreenName: "fan", CreatedAt: now, FriendIDs: []int64{1, 50}, FavoritedIDs: []int64{100}},
		{ID: 3, ScreenName: "lurker", CreatedAt: now, FriendIDs: []int64{1}},
		{ID: 4, ScreenName: "stranger", CreatedAt: now},
	}
	for _, u := range users {
		if _, err := g.IngestUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func TestRankAll(t *testing.T) {
	db := seededDB(t)
	rankings, rep, err := RankAll(context.Background(), db, RankJobOptions{Workers: 3, Policy: score.LinearPolicy{W: score.DefaultWeights()}})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Users != 4 || len(rankings) != 4 {
		t.Fatalf("expected 4 users, got %+v", rep)
	}
	hub := rankings[0]
	if hub.ScreenName != "hub" || len(hub.Engagements) != 2 {
		t.Fatalf("hub ranking: %+v", hub)
	}
	if hub.Engagements[0].UserB != 2 {
		t.Fatalf("the fan should rank first: %+v", hub.Engagements)
	}
	if len(rankings[3].Engagements) != 0 {
		t.Fatalf("stranger has no connections: %+v", rankings[3])
	}
}

func TestWriteEngagements(t *testing.T) {
	db := seededDB(t)
	rankings, _, err := RankAll(context.Background(), db, RankJobOptions{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out", "engagements.json")
	if err := WriteEngagements(path, rankings); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string][]map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 || len(got["hub"]) != 2 || got["stranger"] == nil {
		t.Fatalf("unexpected export: %v", got)
	}
	first := got["hub"][0]
	if first["user_b"] != float64(2) || first["total_favorites"] != float64(1) {
		t.Fatalf("vector fields missing: %v", first)
	}
}
