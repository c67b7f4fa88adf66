// Package service provides the business logic layer for Connect Four.
//
// The service package implements:
//   - The new game / join / move lifecycle on top of the engine
//   - Transport-neutral inbound events (Event, Dispatch)
//   - Read-only snapshots for transports and renderers
//   - Exactly-once reporting of a finished game
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionRegistry stores sessions and serializes access to each of them.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every operation on a game runs under that game's own lock,
// so games never block each other. The move that ends a game removes it from
// the registry before the lock is released; later requests for the same key
// fail with ErrUnknownSession.
//
// Usage:
//
//	registry := session.NewManager()
//	gameService := service.NewGameService(registry, logger)
//
//	snap, err := gameService.RequestNewGame(ctx, "channel-42", "alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//	_, err = gameService.JoinGame(ctx, snap.Key, "bob")
//
//	result, err := gameService.SubmitMove(ctx, snap.Key, "alice", 4)
//	if result.Terminal {
//		// announce result.Snapshot.Winner
//	}
//
// Rejected moves (wrong player, bad or full column, finished game) are
// returned as outcomes with a nil error. Errors are reserved for requests
// that cannot reach a game at all.
package service
