package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leaderboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"count": 0})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var result map[string]interface{}
	if err := client.apiCall("GET", "/api/leaderboard", nil, &result); err != nil {
		t.Fatalf("apiCall: %v", err)
	}
	if result["count"] != float64(0) {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.apiCall("GET", "/api/sessions/nope", nil, nil)
	if err == nil || err.Error() != "session not found" {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestClient_handleMatchHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("limit not forwarded, query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"matches": []map[string]interface{}{{
				"id":  "room-1",
				"map": "one",
				"players": []map[string]interface{}{
					{"login": "alice", "score": 10, "winner": true},
					{"login": "bob", "score": 3},
				},
				"winner":  "alice",
				"forfeit": false,
			}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"limit": float64(5)}

	result, err := client.handleMatchHistory(context.Background(), req)
	if err != nil {
		t.Fatalf("handleMatchHistory: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "alice vs bob") || !strings.Contains(text, "winner alice") {
		t.Errorf("unexpected tool output:\n%s", text)
	}
}

func TestClient_handleGetMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":           "two",
			"description":    "Neon arena",
			"ball_speed":     1.5,
			"paddle_scale":   1.0,
			"win_score":      10,
			"power_ups":      true,
			"power_up_kinds": []string{"speed_ball"},
			"theme":          "neon",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"name": "two"}

	result, err := client.handleGetMap(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGetMap: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, `Map "two"`) || !strings.Contains(text, "speed_ball") {
		t.Errorf("unexpected tool output:\n%s", text)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool result is not text: %T", result.Content[0])
	}
	return text.Text
}
