package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/frfrance/pong-arena/game/config"
	"github.com/frfrance/pong-arena/game/history"
	"github.com/frfrance/pong-arena/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pong Arena",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pong Arena - MCP Interface

This is a thin client that proxies all requests to the REST API server.
Gameplay itself runs over the WebSocket transport; these tools give
read access to the arena plus map catalog management.

AVAILABLE TOOLS:
- list_sessions: List live game sessions
- get_session: Get one live session (players, score, map, state)
- match_history: Recently finished matches
- leaderboard: Wins/losses/forfeits per player
- list_maps: Available map definitions
- get_map: Full definition of one map`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all live game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a live session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID of the session to retrieve",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "match_history",
		Description: "List recently finished matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of matches to return (default 20)",
				},
			},
		},
	}, c.handleMatchHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Standings across all finished matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List available map definitions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_map",
		Description: "Get the full definition of one map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Map name, e.g. \"one\"",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleGetMap)
}

// GetMCPServer returns the underlying MCP server for mounting.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Live Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s\n", formatSessionLine(s))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var info service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", roomID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleMatchHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/matches"
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if limit, ok := args["limit"].(float64); ok && limit > 0 {
			path = fmt.Sprintf("%s?limit=%d", path, int(limit))
		}
	}

	var response struct {
		Count   int              `json:"count"`
		Matches []*history.Match `json:"matches"`
	}
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent Matches (%d):\n\n", response.Count)
	for _, m := range response.Matches {
		outcome := fmt.Sprintf("%d:%d", m.Players[0].Score, m.Players[1].Score)
		if m.Forfeit {
			outcome += " (forfeit)"
		}
		fmt.Fprintf(&b, "- %s vs %s on %s — %s, winner %s\n",
			m.Players[0].Login, m.Players[1].Login, m.Map, outcome, m.Winner)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count     int                 `json:"count"`
		Standings []*history.Standing `json:"standings"`
	}
	if err := c.apiCall("GET", "/api/leaderboard", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Leaderboard:\n\n")
	for i, s := range response.Standings {
		fmt.Fprintf(&b, "%d. %s — %d wins / %d losses (%d forfeits, %d played)\n",
			i+1, s.Login, s.Wins, s.Losses, s.Forfeits, s.Played)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []config.MapInfo
	if err := c.apiCall("GET", "/api/maps", nil, &maps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Maps:\n\n")
	for _, m := range maps {
		kind := "custom"
		if m.BuiltIn {
			kind = "built-in"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Win score: %d, power-ups: %t\n\n",
			m.Name, kind, m.Description, m.WinScore, m.PowerUps)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)

	var cfg config.MapConfig
	if err := c.apiCall("GET", fmt.Sprintf("/api/maps/%s", name), nil, &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Map %q — %s\n", cfg.Name, cfg.Description)
	fmt.Fprintf(&b, "Ball speed: %.1f\nPaddle scale: %.1f\nWin score: %d\nTheme: %s\n",
		cfg.BallSpeed, cfg.PaddleScale, cfg.WinScore, cfg.Theme)
	if cfg.PowerUps {
		fmt.Fprintf(&b, "Power-ups: %s\n", strings.Join(cfg.PowerUpKinds, ", "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatters

func formatSessionLine(s *service.SessionInfo) string {
	return fmt.Sprintf("%s: %s vs %s [%s] %d:%d map=%s",
		s.ID, s.Players[0].Login, s.Players[1].Login, s.State,
		s.Score[0], s.Score[1], s.Map)
}

func formatSessionInfo(s *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", s.ID)
	fmt.Fprintf(&b, "State: %s\n", s.State)
	fmt.Fprintf(&b, "Players: %s vs %s\n", s.Players[0].Login, s.Players[1].Login)
	fmt.Fprintf(&b, "Score: %d:%d\n", s.Score[0], s.Score[1])
	if s.Map != "" {
		fmt.Fprintf(&b, "Map: %s\n", s.Map)
	}
	if s.MapConfig != nil {
		fmt.Fprintf(&b, "Win score: %d\n", s.MapConfig.WinScore)
	}
	if s.Winner != "" {
		fmt.Fprintf(&b, "Winner: %s\n", s.Winner)
	}
	fmt.Fprintf(&b, "Created: %s\n", s.CreatedAt.Format("15:04:05"))
	return b.String()
}
