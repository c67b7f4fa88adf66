// Package api provides the HTTP REST API for Connect Four.
//
// Endpoints:
//
// Game lifecycle:
//   - POST /api/games - Request a new game ({"key": "...", "player": "..."}); the key is optional
//   - GET /api/games - List games (optional ?status= and ?limit=)
//   - GET /api/games/{key} - Get a game snapshot
//   - POST /api/games/{key}/join - Join a waiting game ({"player": "..."})
//   - DELETE /api/games/{key} - Abandon a game
//
// Game operations:
//   - POST /api/games/{key}/moves - Drop a token ({"player": "...", "column": 1-7})
//   - GET /api/games/{key}/board - Rendered board as plain text
//
// Other:
//   - GET /api/health - Health check
//   - GET /ws?game={key} - WebSocket upgrade for live updates
//
// Rejected moves are not HTTP errors: the response is 200 with the outcome
// (invalid_column, wrong_player, game_over) and the unchanged snapshot.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "unknown session"}
//
// Status codes: 404 for unknown games, 409 for lifecycle conflicts (key taken,
// game already joined, joining your own game, moving before the opponent
// joined) and 400 for malformed requests.
package api
