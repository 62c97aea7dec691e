// Package engine implements the lifecycle state machine for a Pong match.
//
// The engine package covers:
//   - The session state machine (Pending through Ended/Forfeited)
//   - Map negotiation between the two bound players
//   - The pre-game countdown tick sequence
//   - Score tracking and winner resolution
//
// Core Types:
//
// Session is the single source of truth for one match between two players.
// All transitions and field mutations of a Session are serialized by an
// internal per-session mutex, so two peers racing (a forfeit against an
// in-flight score update, for example) always observe a consistent order.
// Snapshot is the read-only view handed to spectators and the REST API.
//
// Lifecycle:
//
//	Pending -> Starting -> CountingDown -> Live -> Ended
//	            |               |            |
//	            +---------------+------------+--> Forfeited
//
// Starting requires both players bound. CountingDown requires a negotiated
// map. Live follows the last countdown tick automatically. Forfeited is
// reachable from every non-terminal state and declares the opposing player
// the winner by default score. Transition violations are rejected with
// ErrInvalidTransition and leave the session untouched.
//
// Map Negotiation:
//
// Exactly one player, the session's first-listed one, may choose the map.
// A resend before the countdown starts overwrites the previous choice; once
// the countdown runs the choice is locked and duplicate frames are
// acknowledged without effect. The other player's attempts fail with
// ErrInvalidChooser. Gameplay events are rejected with ErrMapNotSet until a
// map is in place.
//
// Usage:
//
//	sess := engine.NewSession(id, challenger, opponent)
//	if err := sess.Start(); err != nil {
//		log.Fatal(err)
//	}
//	if err := sess.SetMap(challenger.UserID, "two"); err != nil {
//		log.Fatal(err)
//	}
//	sess.StartCountdown(5, time.Second, onTick, onLive)
//
// Concurrency:
//
// Every exported method is safe for concurrent use. The countdown runs on
// its own goroutine and is cancelled when the session reaches a terminal
// state mid-count. Callbacks are invoked outside the session lock.
package engine
