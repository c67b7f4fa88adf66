// Package engine provides the core game logic for Connect Four.
//
// The engine package implements the game mechanics including:
//   - A fixed 6x7 board with row-major cell storage
//   - Gravity placement of dropped tokens
//   - Four-in-a-row detection along every axis
//   - Move validation and outcome classification
//   - Board layouts for fixtures and position analysis
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by Game. Board holds the grid and exposes read-only queries;
// cells are only written through Game.AttemptMove.
//
// Usage:
//
//	game, err := engine.NewGame("alice", "bob")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drop a token into column 4 (columns are 1-based)
//	outcome := game.AttemptMove("alice", 4)
//	next := game.NextPlayer()
//
// Game Rules:
//
// Players alternate dropping tokens into one of seven columns; a token falls
// to the lowest empty cell. The first player to line up four tokens
// horizontally, vertically or diagonally wins. A full board with no line is a
// draw. Whose turn it is follows from the parity of the empty cell count, so
// moves must be applied one at a time and never partially.
package engine
