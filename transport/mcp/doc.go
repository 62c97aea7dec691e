// Package mcp exposes the arena's read surface over the Model Context
// Protocol, using mark3labs/mcp-go. It is deliberately a thin client: every
// tool call proxies to the REST API rather than reaching into the game
// core, so the MCP process can run next to the server or on another host
// with nothing but the base URL.
//
// Tools cover live sessions, match history, the leaderboard and the map
// catalog. Gameplay is out of reach on purpose: matches are driven by the
// two players over the WebSocket transport, and an agent poking a live
// session through MCP would only be a third wheel.
package mcp
