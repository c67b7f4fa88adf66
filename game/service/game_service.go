package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
)

var (
	ErrUnknownSession       = errors.New("unknown session")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrSessionAlreadyBound  = errors.New("session already has two players")
	ErrSelfJoin             = errors.New("player cannot join their own game")
	ErrGameNotStarted       = errors.New("game is waiting for an opponent")
	ErrInvalidEvent         = errors.New("invalid event")
)

// GameService defines all game-related operations
type GameService interface {
	// Session lifecycle
	RequestNewGame(ctx context.Context, key string, player engine.PlayerID) (*Snapshot, error)
	JoinGame(ctx context.Context, key string, player engine.PlayerID) (*Snapshot, error)
	AbandonGame(ctx context.Context, key string) error

	// Game operations
	SubmitMove(ctx context.Context, key string, player engine.PlayerID, column int) (*MoveResult, error)
	Dispatch(ctx context.Context, event Event) (*Reply, error)

	// Game state
	GetSnapshot(ctx context.Context, key string) (*Snapshot, error)
	ListGames(ctx context.Context) ([]*Snapshot, error)
}

// SessionRegistry defines session storage operations. Snapshots returned by
// the registry are taken under the session's lock.
type SessionRegistry interface {
	CreateWaiting(key string, player engine.PlayerID) (*Snapshot, error)
	BindOpponent(key string, player engine.PlayerID) (*Snapshot, error)
	Lookup(key string) (*Snapshot, error)
	Remove(key string) error
	// WithSession runs fn while holding the lock of a single session.
	WithSession(key string, fn func(*Session) error) error
	List() []*Session
	Count() int
}

// Status is the lifecycle stage of a session
type Status string

const (
	StatusWaiting    Status = "waiting_for_opponent"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Session represents one game between two players. Key and CreatedAt never
// change; every other field is guarded by the registry's per-session lock and
// must only be touched inside WithSession.
type Session struct {
	Key            string
	PlayerA        engine.PlayerID
	PlayerB        engine.PlayerID
	Game           *engine.Game
	Status         Status
	Result         engine.Outcome
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewWaitingSession creates a session holding only its first player
func NewWaitingSession(key string, player engine.PlayerID, now time.Time) *Session {
	return &Session{
		Key:            key,
		PlayerA:        player,
		Status:         StatusWaiting,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// Bind attaches the second player and starts the game
func (s *Session) Bind(player engine.PlayerID, now time.Time) error {
	if s.Status != StatusWaiting {
		return ErrSessionAlreadyBound
	}
	if player == s.PlayerA {
		return ErrSelfJoin
	}

	game, err := engine.NewGame(s.PlayerA, player)
	if err != nil {
		return err
	}

	s.PlayerB = player
	s.Game = game
	s.Status = StatusInProgress
	s.Touch(now)
	return nil
}

// Finish records the terminal outcome
func (s *Session) Finish(result engine.Outcome) {
	s.Status = StatusFinished
	s.Result = result
}

// Touch updates the last accessed time
func (s *Session) Touch(now time.Time) {
	s.LastAccessedAt = now
}
