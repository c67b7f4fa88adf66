// Package mcp exposes Connect Four to AI agents over the Model Context Protocol.
//
// The Client is a thin MCP server whose tools proxy to the REST API, so an
// agent connected over stdio plays the same games as HTTP and WebSocket
// clients.
//
// MCP Tools:
//   - new_game: Request a game and wait for an opponent
//   - join_game: Join a waiting game
//   - drop_token: Drop a token into a column (1-7)
//   - game_state: Board, players and whose turn it is
//   - list_games: Open and running games
//   - abandon_game: Discard a game
//   - game_rules: Rules and board legend
//
// Tool results render the board with the render package. Rejected moves come
// back as normal results; only requests the API refuses (unknown game, bad
// arguments) are tool errors.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST JSON-RPC bodies to /mcp, handled by GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
