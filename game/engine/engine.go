package engine

import (
	"errors"
	"fmt"
)

var (
	ErrSamePlayer  = errors.New("players must be distinct")
	ErrEmptyPlayer = errors.New("player identity is required")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Turn and state queries
	NextPlayer() PlayerID
	Board() *Board
	Players() (PlayerID, PlayerID)
	LastMove() (index int, ok bool)
	Result() (Outcome, bool)

	// Move processing
	AttemptMove(player PlayerID, column int) Outcome
}

// Game implements the Engine interface for a single match between two players
type Game struct {
	playerA  PlayerID
	playerB  PlayerID
	board    *Board
	last     int
	result   Outcome
	finished bool
}

// NewGame creates a new game. playerA is the first-bound player and moves first.
func NewGame(playerA, playerB PlayerID) (*Game, error) {
	if playerA == "" || playerB == "" {
		return nil, ErrEmptyPlayer
	}
	if playerA == playerB {
		return nil, fmt.Errorf("%w: %q", ErrSamePlayer, playerA)
	}

	return &Game{
		playerA: playerA,
		playerB: playerB,
		board:   NewBoard(),
		last:    -1,
	}, nil
}

// NewGameFromBoard resumes a game on an existing position. The position is
// validated; whose turn it is follows from its empty count.
func NewGameFromBoard(playerA, playerB PlayerID, board *Board) (*Game, error) {
	g, err := NewGame(playerA, playerB)
	if err != nil {
		return nil, err
	}
	if err := ValidateBoard(board); err != nil {
		return nil, err
	}
	g.board = board.Clone()
	return g, nil
}

// Board returns the game board
func (g *Game) Board() *Board {
	return g.board
}

// Players returns the first- and second-bound players
func (g *Game) Players() (PlayerID, PlayerID) {
	return g.playerA, g.playerB
}

// NextPlayer returns whose turn it is. The board starts with an even number of
// empty cells and every ply consumes exactly one, so the parity of the empty
// count alternates between the two players.
func (g *Game) NextPlayer() PlayerID {
	if g.board.CountEmpty()%2 == 0 {
		return g.playerA
	}
	return g.playerB
}

// TokenFor returns the token a player drops, or Empty for a stranger
func (g *Game) TokenFor(player PlayerID) Token {
	switch player {
	case g.playerA:
		return TokenA
	case g.playerB:
		return TokenB
	default:
		return Empty
	}
}

// PlayerFor returns the identity owning a token
func (g *Game) PlayerFor(token Token) (PlayerID, bool) {
	switch token {
	case TokenA:
		return g.playerA, true
	case TokenB:
		return g.playerB, true
	default:
		return "", false
	}
}

// LastMove returns the index of the most recently placed cell
func (g *Game) LastMove() (int, bool) {
	return g.last, g.last >= 0
}

// Result returns the terminal outcome once the game has one
func (g *Game) Result() (Outcome, bool) {
	return g.result, g.finished
}

// IsOver reports whether the game produced a terminal outcome
func (g *Game) IsOver() bool {
	return g.finished
}

// AttemptMove validates and applies a move. The column is 1-based.
// The first failing check decides the outcome and nothing is mutated.
func (g *Game) AttemptMove(player PlayerID, column int) Outcome {
	if g.finished {
		return GameOver
	}

	if player != g.NextPlayer() {
		return WrongPlayer
	}

	if column < MinColumn || column > MaxColumn {
		return InvalidColumn
	}

	if g.board.ColumnFull(column - 1) {
		return InvalidColumn
	}

	return g.apply(player, column-1)
}

// apply drops the player's token into a 0-based column already known to have room
func (g *Game) apply(player PlayerID, column int) Outcome {
	index, ok := landingIndex(g.board, column)
	if !ok || !g.board.set(index, g.TokenFor(player)) {
		return InvalidColumn
	}
	g.last = index

	switch {
	case isWinningMove(g.board, index):
		if player == g.playerA {
			return g.finish(WinA)
		}
		return g.finish(WinB)
	case g.board.CountEmpty() == 0:
		return g.finish(Draw)
	default:
		return Accepted
	}
}

func (g *Game) finish(result Outcome) Outcome {
	g.result = result
	g.finished = true
	return result
}

// Winner returns the winning player for a win outcome
func (g *Game) Winner(result Outcome) (PlayerID, bool) {
	switch result {
	case WinA:
		return g.playerA, true
	case WinB:
		return g.playerB, true
	default:
		return "", false
	}
}
