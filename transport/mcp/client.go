package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
	"github.com/wricardo/mcp-training/connectfour/game/render"
	"github.com/wricardo/mcp-training/connectfour/game/service"
)

// ServerName is the name announced to MCP clients
const ServerName = "Connect Four"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API rooted at baseURL
func NewClient(baseURL, version string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Connect Four - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players take turns dropping tokens into a 7 column, 6 row board. The first
to line up four tokens horizontally, vertically or diagonally wins.

AVAILABLE TOOLS:
- new_game: Ask for a new game and wait for an opponent
- join_game: Join a waiting game as the second player
- drop_token: Drop a token into a column (1-7)
- game_state: Show the board and whose turn it is
- list_games: List open and running games
- abandon_game: Discard a game
- game_rules: Full rules and board legend

A game is addressed by its key. When a game ends it is removed, so the
drop_token result is the final word on who won.`),
	)

	// Register all tools
	c.registerTools()
}

func keyProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func playerProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Your player name",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Game lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Request a new game. The game waits for an opponent to join.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": playerProperty(),
				"key":    keyProperty("Key for the new game, e.g. a channel name (optional, generated when empty)"),
			},
			Required: []string{"player"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a game that is waiting for an opponent",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key":    keyProperty("Key of the game to join"),
				"player": playerProperty(),
			},
			Required: []string{"key", "player"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "abandon_game",
		Description: "Discard a game without a result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": keyProperty("Key of the game to abandon"),
			},
			Required: []string{"key"},
		},
	}, c.handleAbandonGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List games, optionally filtered by status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type": "string",
					"enum": []string{
						string(service.StatusWaiting),
						string(service.StatusInProgress),
					},
					"description": "Only list games with this status",
				},
			},
		},
	}, c.handleListGames)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drop_token",
		Description: "Drop your token into a column. It falls to the lowest empty cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key":    keyProperty("Key of the game"),
				"player": playerProperty(),
				"column": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinColumn,
					"maximum":     engine.MaxColumn,
					"description": "Column to drop into, 1 (left) to 7 (right)",
				},
			},
			Required: []string{"key", "player", "column"},
		},
	}, c.handleDropToken)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, the players and whose turn it is",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": keyProperty("Key of the game"),
			},
			Required: []string{"key"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete rules of Connect Four and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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

func gamePath(key string, suffix string) string {
	return "/api/games/" + url.PathEscape(key) + suffix
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func missing(name string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s is required", name))
}

// Tool handlers

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	player := stringArg(args, "player")
	if player == "" {
		return missing("player"), nil
	}

	body := map[string]string{"player": player}
	if key := stringArg(args, "key"); key != "" {
		body["key"] = key
	}

	var snap service.Snapshot
	if err := c.apiCall(ctx, "POST", "/api/games", body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created game: %s\n\n%s", snap.Key, render.Message(&snap))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	key := stringArg(args, "key")
	player := stringArg(args, "player")
	if key == "" {
		return missing("key"), nil
	}
	if player == "" {
		return missing("player"), nil
	}

	var snap service.Snapshot
	if err := c.apiCall(ctx, "POST", gamePath(key, "/join"), map[string]string{"player": player}, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(render.Message(&snap)), nil
}

func (c *Client) handleAbandonGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := stringArg(arguments(request), "key")
	if key == "" {
		return missing("key"), nil
	}

	var resp map[string]string
	if err := c.apiCall(ctx, "DELETE", gamePath(key, ""), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(resp["message"]), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/games"
	if status := stringArg(arguments(request), "status"); status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var response struct {
		Count int                `json:"count"`
		Games []service.Snapshot `json:"games"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameList(response.Count, response.Games)), nil
}

func (c *Client) handleDropToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	key := stringArg(args, "key")
	player := stringArg(args, "player")
	if key == "" {
		return missing("key"), nil
	}
	if player == "" {
		return missing("player"), nil
	}
	column, ok := intArg(args, "column")
	if !ok {
		return mcp.NewToolResultError("column must be a whole number from 1 to 7"), nil
	}

	body := map[string]interface{}{
		"player": player,
		"column": column,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", gamePath(key, "/moves"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := stringArg(arguments(request), "key")
	if key == "" {
		return missing("key"), nil
	}

	var snap service.Snapshot
	if err := c.apiCall(ctx, "GET", gamePath(key, ""), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&snap)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := fmt.Sprintf(`Connect Four - Rules

GAME OBJECTIVE:
Be the first to place four of your tokens in a row: horizontally, vertically
or diagonally.

STARTING A GAME:
1. One player calls new_game. The game waits for an opponent.
2. A different player calls join_game with the same key.
3. The player who asked for the game moves first.

TAKING TURNS:
- Players alternate. A move out of turn is rejected and changes nothing.
- drop_token takes a column from %d (left) to %d (right).
- The token falls to the lowest empty cell of that column.
- A full column or a column outside %d-%d is rejected; try another column.

ENDING THE GAME:
- Four in a row wins immediately.
- If all %d cells fill up with no four in a row, the game is a draw.
- A finished game is removed. Ask for a new game to play again.

BOARD LEGEND:
%s  column numbers
%s  empty cell
%s  first player (%s)
%s  second player (%s)

The top line of the board is the top row; tokens stack from the bottom line up.`,
		engine.MinColumn, engine.MaxColumn, engine.MinColumn, engine.MaxColumn, engine.Cells,
		strings.Join(render.ColumnKeys[:], ""),
		render.Glyph(engine.Empty),
		render.Glyph(engine.TokenA), render.ColorA,
		render.Glyph(engine.TokenB), render.ColorB,
	)

	return mcp.NewToolResultText(rules), nil
}

// Formatting helpers

func formatGameState(snap *service.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game: %s\nStatus: %s\n", snap.Key, snap.Status)
	if snap.LastMove != nil {
		fmt.Fprintf(&sb, "Last move: column %d, row %d\n", snap.LastMove.Column, snap.LastMove.Row)
	}
	fmt.Fprintf(&sb, "Empty cells: %d\n\n", snap.EmptyCells)
	sb.WriteString(render.Message(snap))
	return sb.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	switch {
	case result.Outcome.IsRejection():
		fmt.Fprintf(&sb, "✗ Move rejected (%s): %s\n", result.Outcome, result.Message)
	case result.Terminal:
		fmt.Fprintf(&sb, "🏁 %s\n", result.Message)
	default:
		fmt.Fprintf(&sb, "✓ %s\n", result.Message)
	}

	if result.Snapshot != nil {
		sb.WriteByte('\n')
		sb.WriteString(render.Message(result.Snapshot))
	}
	return sb.String()
}

func formatGameList(count int, games []service.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games (%d):\n\n", count)
	for _, g := range games {
		switch g.Status {
		case service.StatusWaiting:
			fmt.Fprintf(&sb, "- %s: %s is waiting for an opponent (created %s)\n",
				g.Key, g.PlayerA, g.CreatedAt.Format("15:04:05"))
		default:
			fmt.Fprintf(&sb, "- %s: %s VS %s, %s to move\n",
				g.Key, g.PlayerA, g.PlayerB, g.NextPlayer)
		}
	}
	return sb.String()
}
