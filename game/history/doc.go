// Package history persists durable match records.
//
// The history package implements:
//   - The Recorder facade: create a match at session creation, finalize it
//     exactly once at the terminal state
//   - A SQLite-backed store (the default) with history and leaderboard
//     aggregation pushed into SQL
//   - A JSON-file store for deployments that prefer plain files
//
// Active session state never lives here; the session directory is purely
// in-memory. A match row is written when a session is created and finalized
// with map, scores, winner and timing (plus a forfeit marker when the game
// did not run to its score threshold) before the session is evicted from
// the directory.
package history
