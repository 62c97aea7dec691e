package history

import (
	"context"
	"time"
)

// PlayerResult is one player's line in a match record.
type PlayerResult struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Score  int    `json:"score"`
	Winner bool   `json:"winner"`
}

// Match is the durable record of one game session. It is created when the
// session is, and finalized exactly once when the session reaches a
// terminal state.
type Match struct {
	ID        string          `json:"id"`
	Map       string          `json:"map,omitempty"`
	Players   [2]PlayerResult `json:"players"`
	Winner    string          `json:"winner,omitempty"`
	Forfeit   bool            `json:"forfeit"`
	Finished  bool            `json:"finished"`
	CreatedAt time.Time       `json:"created_at"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
	Duration  time.Duration   `json:"duration_ms"`
}

// Standing is one row of the leaderboard.
type Standing struct {
	Login    string `json:"login"`
	Played   int    `json:"played"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Forfeits int    `json:"forfeits"`
}

// Recorder is the persistence facade for match records. CreateMatch runs
// when a session is created; FinishMatch runs at the terminal state and
// must complete before the session leaves the directory.
type Recorder interface {
	CreateMatch(ctx context.Context, m *Match) error
	FinishMatch(ctx context.Context, m *Match) error
	History(ctx context.Context, limit int) ([]*Match, error)
	Leaderboard(ctx context.Context) ([]*Standing, error)
	Close() error
}
