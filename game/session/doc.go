// Package session provides the in-memory directory of active Pong sessions.
//
// The session package implements:
//   - Thread-safe session storage keyed by room id
//   - Secondary indexes by player identity and spectator-group id
//   - The one-active-session-per-player invariant
//   - Eviction on terminal states
//
// Core Types:
//
// Manager is the session directory. It holds every *engine.Session from
// successful matchmaking until the session reaches Ended or Forfeited and
// the durable match record has been written, at which point the owner calls
// Remove.
//
// Session Identifiers:
//
// Room ids are UUIDs generated at creation. The spectator-group (watch) id
// is assigned by the engine during map negotiation and registered here so
// watchers can look a session up without knowing the room id.
//
// Concurrency:
//
// The directory guards its tables with a short-lived RWMutex that is never
// held across a session mutation; per-session serialization is the
// engine.Session's own concern. Multiple goroutines can safely create,
// look up, and remove different sessions simultaneously.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create(initiator, challenged)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(roomID)
//	if busySess, ok := manager.ForUser(userID); ok {
//		// userID is already in a game
//	}
package session
