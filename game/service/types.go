package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
)

// Snapshot is the read-only view of a session handed to transports
type Snapshot struct {
	Key            string           `json:"key"`
	Status         Status           `json:"status"`
	PlayerA        engine.PlayerID  `json:"player_a"`
	PlayerB        engine.PlayerID  `json:"player_b,omitempty"`
	NextPlayer     engine.PlayerID  `json:"next_player,omitempty"`
	Result         *engine.Outcome  `json:"result,omitempty"`
	Winner         engine.PlayerID  `json:"winner,omitempty"`
	Board          [][]engine.Token `json:"board"`
	LastMove       *Placement       `json:"last_move,omitempty"`
	EmptyCells     int              `json:"empty_cells"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
}

// Placement is a placed cell. Column counts 1-7 from the left, Row counts
// 1-6 from the top.
type Placement struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Outcome  engine.Outcome `json:"outcome"`
	Terminal bool           `json:"terminal"`
	Message  string         `json:"message"`
	Snapshot *Snapshot      `json:"snapshot"`
}

// EventKind names an inbound request
type EventKind string

const (
	EventNewGame EventKind = "new_game"
	EventJoin    EventKind = "join"
	EventMove    EventKind = "move"
)

// Event is a transport-neutral inbound request
type Event struct {
	Kind   EventKind       `json:"kind"`
	Key    string          `json:"key"`
	Player engine.PlayerID `json:"player"`
	Column int             `json:"column,omitempty"`
}

// Validate checks that the event carries what its kind needs
func (e Event) Validate() error {
	switch e.Kind {
	case EventNewGame:
	case EventJoin, EventMove:
		if strings.TrimSpace(e.Key) == "" {
			return fmt.Errorf("%w: %s requires a key", ErrInvalidEvent, e.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.Player == "" {
		return fmt.Errorf("%w: %s requires a player", ErrInvalidEvent, e.Kind)
	}
	return nil
}

// Reply is the answer to a dispatched event
type Reply struct {
	Kind     EventKind   `json:"kind"`
	Snapshot *Snapshot   `json:"snapshot"`
	Move     *MoveResult `json:"move,omitempty"`
}

// NewSnapshot copies a session into a snapshot. Must be called under the
// session lock.
func NewSnapshot(s *Session) *Snapshot {
	snap := &Snapshot{
		Key:            s.Key,
		Status:         s.Status,
		PlayerA:        s.PlayerA,
		PlayerB:        s.PlayerB,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}

	if s.Game == nil {
		snap.Board = engine.NewBoard().Rows()
		snap.EmptyCells = engine.Cells
		return snap
	}

	board := s.Game.Board()
	snap.Board = board.Rows()
	snap.EmptyCells = board.CountEmpty()

	if idx, ok := s.Game.LastMove(); ok {
		column, row := engine.Position(idx)
		snap.LastMove = &Placement{Column: column + 1, Row: row + 1}
	}

	switch s.Status {
	case StatusInProgress:
		snap.NextPlayer = s.Game.NextPlayer()
	case StatusFinished:
		result := s.Result
		snap.Result = &result
		if winner, ok := s.Game.Winner(result); ok {
			snap.Winner = winner
		}
	}

	return snap
}

// describeOutcome returns a short human readable message for a move outcome
func describeOutcome(outcome engine.Outcome, player engine.PlayerID, column int, winner engine.PlayerID) string {
	switch outcome {
	case engine.Accepted:
		return fmt.Sprintf("%s dropped a token in column %d", player, column)
	case engine.WinA, engine.WinB:
		return fmt.Sprintf("%s has won the game", winner)
	case engine.Draw:
		return "The game was a draw!!"
	case engine.InvalidColumn:
		return fmt.Sprintf("column %d cannot take a token", column)
	case engine.WrongPlayer:
		return fmt.Sprintf("it is not %s's turn", player)
	case engine.GameOver:
		return "the game is already over"
	default:
		return outcome.String()
	}
}
