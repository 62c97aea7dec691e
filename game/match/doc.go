// Package match provides player presence tracking and matchmaking.
//
// The match package implements:
//   - The connection registry mapping identities to live transport handles
//   - Direct invitations between two named players
//   - The FIFO waiting queue for anonymous matchmaking
//   - Cleanup of pending invitations when a disconnect interrupts either path
//
// Core Types:
//
// Registry owns UserPresence state: one live handle per identity, one
// identity per handle, and the in-game flag. Coordinator drives both
// matchmaking paths through a single mutex, so a player can never be
// matched by an invitation and the queue at the same time.
//
// Invitation Protocol:
//
// A challenge checks, in order, that the opponent is connected, is not the
// challenger, and that neither party is already in a game; one pending
// invitation per player pair is allowed. The in-game flag is set only when
// a session actually forms (accept or queue pairing), never by a pending
// invitation. Replies never trust the stored invitation: both parties are
// re-resolved by their live handles, and if either is gone the exchange
// fails with ErrResolutionLost; an accept against a party that went
// mid-game in the meantime is refused as busy.
package match
