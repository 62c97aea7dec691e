// Package api exposes the HTTP surface of the game backend: a small REST
// API over gorilla/mux for live session snapshots, match history, the
// leaderboard and the map catalog, plus the /ws endpoint that upgrades
// into the real-time transport.
//
// Gameplay never flows through REST. Sessions are created and driven over
// the WebSocket; the API only reads them, which keeps every handler a thin
// call into the GameService read surface.
package api
