// Package websocket is the real-time transport of the game backend, built
// on gorilla/websocket. Every connection gets a freshly minted handle; the
// game core addresses replies and room membership by that handle and never
// sees a raw connection.
//
// Frames are JSON envelopes of the form {"event": ..., "data": {...}}.
// Inbound frames are decoded in the gateway and dispatched to the
// GameService; rejected operations are answered with an error event on the
// same connection and never tear it down. Outbound delivery happens
// through the service.Emitter interface the Hub implements: direct sends
// to a handle, room broadcasts with sender exclusion, and room teardown
// when a session ends.
//
// Each client runs the usual two pumps. The read pump feeds the gateway
// and triggers the disconnect flow (forfeit, matchmaking cleanup) when the
// connection drops; the write pump serializes all writes and keeps the
// connection alive with pings.
package websocket
