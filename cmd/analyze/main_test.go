package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/frfrance/pong-arena/game/history"
)

func seedStore(t *testing.T) *history.SQLiteStore {
	t.Helper()
	store, err := history.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now()
	fixtures := []*history.Match{
		{
			ID: "m1", Map: "one", Winner: "alice", Finished: true,
			Players: [2]history.PlayerResult{
				{UserID: "u1", Login: "alice", Score: 10, Winner: true},
				{UserID: "u2", Login: "bob", Score: 4},
			},
			CreatedAt: now.Add(-3 * time.Minute), StartedAt: now.Add(-3 * time.Minute),
			EndedAt: now.Add(-time.Minute), Duration: 2 * time.Minute,
		},
		{
			ID: "m2", Map: "one", Winner: "bob", Forfeit: true, Finished: true,
			Players: [2]history.PlayerResult{
				{UserID: "u1", Login: "alice", Score: 2},
				{UserID: "u2", Login: "bob", Score: 10, Winner: true},
			},
			CreatedAt: now.Add(-2 * time.Minute), StartedAt: now.Add(-2 * time.Minute),
			EndedAt: now, Duration: 2 * time.Minute,
		},
		{
			ID: "m3", Map: "three", Winner: "alice", Finished: true,
			Players: [2]history.PlayerResult{
				{UserID: "u1", Login: "alice", Score: 10, Winner: true},
				{UserID: "u3", Login: "carol", Score: 9},
			},
			CreatedAt: now.Add(-time.Minute), StartedAt: now.Add(-time.Minute),
			EndedAt: now, Duration: time.Minute,
		},
	}
	for _, m := range fixtures {
		if err := store.FinishMatch(ctx, m); err != nil {
			t.Fatalf("FinishMatch(%s): %v", m.ID, err)
		}
	}
	return store
}

func TestAnalyzeMatches(t *testing.T) {
	store := seedStore(t)

	matches, err := store.History(context.Background(), 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	// Exercised for panics and basic shape; the numbers themselves are
	// asserted through the store queries below.
	analyzeMatches(matches)

	forfeits := 0
	perMap := make(map[string]int)
	for _, m := range matches {
		if m.Forfeit {
			forfeits++
		}
		perMap[m.Map]++
	}
	if forfeits != 1 {
		t.Errorf("forfeits = %d, want 1", forfeits)
	}
	if perMap["one"] != 2 || perMap["three"] != 1 {
		t.Errorf("unexpected per-map counts: %v", perMap)
	}
}

func TestTopPlayers(t *testing.T) {
	store := seedStore(t)

	standings, err := store.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(standings))
	}
	if standings[0].Login != "alice" || standings[0].Wins != 2 {
		t.Errorf("unexpected leader: %+v", standings[0])
	}

	printTopPlayers(standings, 2)
}
