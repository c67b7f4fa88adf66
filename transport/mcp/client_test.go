package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/connectfour/api"
	"github.com/wricardo/mcp-training/connectfour/game/service"
	"github.com/wricardo/mcp-training/connectfour/game/session"
)

// newTestClient returns a client backed by a real API server
func newTestClient(t *testing.T) *Client {
	t.Helper()
	svc := service.NewGameService(session.NewManager(), nil)
	server := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test")
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content in result")
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", "1.0.0")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")

	var response map[string]interface{}
	require.NoError(t, client.apiCall(context.Background(), "GET", "/api/health", nil, &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999", "test")

	err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil)
	assert.Error(t, err)
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "Plain body", body: "Internal Server Error", expected: "API error: 500"},
		{name: "JSON error", body: `{"error":"boom"}`, expected: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL, "test").apiCall(context.Background(), "GET", "/api", nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
		ok    bool
	}{
		{name: "float", value: float64(4), want: 4, ok: true},
		{name: "fraction", value: 4.5, want: 4, ok: false},
		{name: "int", value: 3, want: 3, ok: true},
		{name: "json number", value: json.Number("7"), want: 7, ok: true},
		{name: "string", value: "4", want: 0, ok: false},
		{name: "missing", value: nil, want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intArg(map[string]interface{}{"column": tt.value}, "column")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_PlayGame(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	result, err := client.handleNewGame(ctx, callTool("new_game", map[string]interface{}{
		"player": "alice",
		"key":    "room",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Created game: room")
	assert.Contains(t, text, "alice wants to start a game of Connect 4")

	result, err = client.handleJoinGame(ctx, callTool("join_game", map[string]interface{}{
		"key":    "room",
		"player": "bob",
	}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "Connect 4: alice VS bob")
	assert.Contains(t, text, "Next Up: alice (red)")

	// alice stacks column 1, bob stacks column 2
	for i := 0; i < 3; i++ {
		result, err = client.handleDropToken(ctx, callTool("drop_token", map[string]interface{}{
			"key": "room", "player": "alice", "column": float64(1),
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		result, err = client.handleDropToken(ctx, callTool("drop_token", map[string]interface{}{
			"key": "room", "player": "bob", "column": float64(2),
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
	}

	result, err = client.handleDropToken(ctx, callTool("drop_token", map[string]interface{}{
		"key": "room", "player": "alice", "column": float64(1),
	}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "🏁 alice has won the game")

	// the finished game is gone
	result, err = client.handleGameState(ctx, callTool("game_state", map[string]interface{}{"key": "room"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), service.ErrUnknownSession.Error())
}

func TestClient_DropToken_Rejected(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	client.handleNewGame(ctx, callTool("new_game", map[string]interface{}{"player": "alice", "key": "room"}))
	client.handleJoinGame(ctx, callTool("join_game", map[string]interface{}{"key": "room", "player": "bob"}))

	result, err := client.handleDropToken(ctx, callTool("drop_token", map[string]interface{}{
		"key": "room", "player": "bob", "column": float64(3),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, "rejections are reported as results")
	text := resultText(t, result)
	assert.Contains(t, text, "✗ Move rejected (wrong_player)")
	assert.Contains(t, text, "it is not bob's turn")
}

func TestClient_DropToken_BadArguments(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{name: "Missing key", args: map[string]interface{}{"player": "alice", "column": float64(1)}, expected: "key is required"},
		{name: "Missing player", args: map[string]interface{}{"key": "room", "column": float64(1)}, expected: "player is required"},
		{name: "Missing column", args: map[string]interface{}{"key": "room", "player": "alice"}, expected: "column must be"},
		{name: "Unknown game", args: map[string]interface{}{"key": "nowhere", "player": "alice", "column": float64(1)}, expected: service.ErrUnknownSession.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleDropToken(ctx, callTool("drop_token", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.expected)
		})
	}
}

func TestClient_ListAndAbandon(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	client.handleNewGame(ctx, callTool("new_game", map[string]interface{}{"player": "alice", "key": "one"}))
	client.handleNewGame(ctx, callTool("new_game", map[string]interface{}{"player": "carol", "key": "two"}))
	client.handleJoinGame(ctx, callTool("join_game", map[string]interface{}{"key": "two", "player": "dave"}))

	result, err := client.handleListGames(ctx, callTool("list_games", map[string]interface{}{}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Games (2)")
	assert.Contains(t, text, "- one: alice is waiting for an opponent")
	assert.Contains(t, text, "- two: carol VS dave, carol to move")

	result, err = client.handleListGames(ctx, callTool("list_games", map[string]interface{}{
		"status": string(service.StatusWaiting),
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Games (1)")

	result, err = client.handleAbandonGame(ctx, callTool("abandon_game", map[string]interface{}{"key": "one"}))
	require.NoError(t, err)
	assert.Equal(t, "Game one abandoned", resultText(t, result))

	result, err = client.handleAbandonGame(ctx, callTool("abandon_game", map[string]interface{}{"key": "one"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestClient_GameState(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	client.handleNewGame(ctx, callTool("new_game", map[string]interface{}{"player": "alice", "key": "room"}))
	client.handleJoinGame(ctx, callTool("join_game", map[string]interface{}{"key": "room", "player": "bob"}))
	client.handleDropToken(ctx, callTool("drop_token", map[string]interface{}{
		"key": "room", "player": "alice", "column": float64(4),
	}))

	result, err := client.handleGameState(ctx, callTool("game_state", map[string]interface{}{"key": "room"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Status: in_progress")
	assert.Contains(t, text, "Last move: column 4, row 6")
	assert.Contains(t, text, "Empty cells: 41")
	assert.Contains(t, text, "Next Up: bob (white)")
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080", "test")

	result, err := client.handleGameRules(context.Background(), callTool("game_rules", map[string]interface{}{}))
	require.NoError(t, err)
	text := resultText(t, result)

	expectedContent := []string{
		"Connect Four - Rules",
		"GAME OBJECTIVE:",
		"STARTING A GAME:",
		"TAKING TURNS:",
		"ENDING THE GAME:",
		"BOARD LEGEND:",
		"from 1 (left) to 7 (right)",
		"all 42 cells",
		"🔴  first player (red)",
	}
	for _, content := range expectedContent {
		assert.Contains(t, text, content)
	}
}

func TestClient_ToolsList(t *testing.T) {
	client := NewClient("http://localhost:8080", "test")
	ctx := context.Background()

	client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`))
	response := client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(response)
	require.NoError(t, err)
	for _, name := range []string{"new_game", "join_game", "drop_token", "game_state", "list_games", "abandon_game", "game_rules"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}
