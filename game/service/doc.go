// Package service is the orchestration layer of the game backend. It owns
// no state of its own: it composes the presence registry, the match
// coordinator, the session directory, the map catalog and the match
// recorder behind a single GameService interface that both the real-time
// transport and the REST API call into.
//
// The flow of a match runs entirely through this package:
//
//	Connect -> Challenge/JoinQueue -> RespondInvitation -> startSession
//	        -> SetMap -> countdown -> gameplay relay -> Finish/GiveUp
//	        -> finalize (record, release players, evict session)
//
// The service never pushes bytes itself. Everything outbound goes through
// the Emitter interface, which the websocket hub implements; tests supply
// a recording fake instead. Broadcast targets are always recomputed from
// the owning session (room id plus the spectator group once assigned), so
// a client cannot steer events into rooms it does not belong to.
//
// Terminal sessions are finalized exactly once: the durable match record is
// written before the session leaves the directory, and every gameplay event
// arriving after that is silently dropped.
package service
