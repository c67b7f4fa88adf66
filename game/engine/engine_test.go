package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	g, err := NewGame(alice, bob)
	require.NoError(t, err)

	a, b := g.Players()
	assert.Equal(t, alice, a)
	assert.Equal(t, bob, b)
	assert.Equal(t, Cells, g.Board().CountEmpty())
	assert.Equal(t, alice, g.NextPlayer(), "first-bound player moves first")
	assert.False(t, g.IsOver())

	_, ok := g.LastMove()
	assert.False(t, ok)
	_, ok = g.Result()
	assert.False(t, ok)
}

func TestNewGame_InvalidPlayers(t *testing.T) {
	_, err := NewGame(alice, alice)
	assert.True(t, errors.Is(err, ErrSamePlayer))

	_, err = NewGame("", bob)
	assert.ErrorIs(t, err, ErrEmptyPlayer)

	_, err = NewGame(alice, "")
	assert.ErrorIs(t, err, ErrEmptyPlayer)
}

func TestGame_TokenAndPlayerMapping(t *testing.T) {
	g := newTestGame(t)

	assert.Equal(t, TokenA, g.TokenFor(alice))
	assert.Equal(t, TokenB, g.TokenFor(bob))
	assert.Equal(t, Empty, g.TokenFor("carol"))

	p, ok := g.PlayerFor(TokenB)
	assert.True(t, ok)
	assert.Equal(t, bob, p)
	_, ok = g.PlayerFor(Empty)
	assert.False(t, ok)

	w, ok := g.Winner(WinA)
	assert.True(t, ok)
	assert.Equal(t, alice, w)
	_, ok = g.Winner(Draw)
	assert.False(t, ok)
}

// Scenario: A stacks four tokens in column 1 while B stacks in column 2.
func TestAttemptMove_VerticalWinForA(t *testing.T) {
	g := newTestGame(t)

	outcomes := playColumns(t, g, 1, 2, 1, 2, 1, 2, 1)

	for i, o := range outcomes[:6] {
		assert.Equal(t, Accepted, o, "move %d", i+1)
	}
	assert.Equal(t, WinA, outcomes[6])

	result, ok := g.Result()
	assert.True(t, ok)
	assert.Equal(t, WinA, result)
	assert.True(t, g.IsOver())
}

func TestAttemptMove_HorizontalWinForB(t *testing.T) {
	g := newTestGame(t)

	outcomes := playColumns(t, g, 1, 2, 1, 3, 1, 4, 7, 5)

	assert.Equal(t, WinB, outcomes[len(outcomes)-1])
	for _, o := range outcomes[:len(outcomes)-1] {
		assert.Equal(t, Accepted, o)
	}
}

func TestAttemptMove_DiagonalWins(t *testing.T) {
	t.Run("rising", func(t *testing.T) {
		g := newTestGame(t)
		outcomes := playColumns(t, g, 1, 2, 2, 3, 3, 4, 3, 4, 4, 7, 4)
		assert.Equal(t, WinA, outcomes[len(outcomes)-1])
	})

	t.Run("falling", func(t *testing.T) {
		g := newTestGame(t)
		outcomes := playColumns(t, g, 7, 6, 6, 5, 5, 4, 5, 4, 4, 1, 4)
		assert.Equal(t, WinA, outcomes[len(outcomes)-1])
	})
}

// Sequences that look like a line of four by flat cell index only.
func TestAttemptMove_NoWrapAroundWin(t *testing.T) {
	tests := []struct {
		name    string
		columns []int
	}{
		{"horizontal", []int{1, 5, 5, 6, 6, 7, 7}},
		{"diagonal", []int{5, 1, 1, 6, 6, 7, 3, 7, 1, 4, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t)
			for i, o := range playColumns(t, g, tt.columns...) {
				assert.Equal(t, Accepted, o, "move %d", i+1)
			}
			assert.False(t, g.IsOver())
		})
	}
}

func TestAttemptMove_InvalidColumn(t *testing.T) {
	for _, column := range []int{0, -1, 8, 100} {
		g := newTestGame(t)
		before := g.Board().Clone()

		assert.Equal(t, InvalidColumn, g.AttemptMove(alice, column), "column %d", column)
		assert.Equal(t, before, g.Board(), "board unchanged")
		assert.Equal(t, alice, g.NextPlayer())
	}
}

func TestAttemptMove_WrongPlayer(t *testing.T) {
	g := newTestGame(t)
	before := g.Board().Clone()

	assert.Equal(t, WrongPlayer, g.AttemptMove(bob, 4))
	assert.Equal(t, WrongPlayer, g.AttemptMove("mallory", 4))
	assert.Equal(t, before, g.Board())
	assert.Equal(t, alice, g.NextPlayer())
}

func TestAttemptMove_ValidationOrder(t *testing.T) {
	g := newTestGame(t)

	// wrong player is reported before a bad column
	assert.Equal(t, WrongPlayer, g.AttemptMove(bob, 8))
	assert.Equal(t, InvalidColumn, g.AttemptMove(alice, 8))
}

func TestAttemptMove_FullColumn(t *testing.T) {
	g := newTestGame(t)

	outcomes := playColumns(t, g, 1, 1, 1, 1, 1, 1)
	for _, o := range outcomes {
		require.Equal(t, Accepted, o)
	}
	require.True(t, g.Board().ColumnFull(0))

	before := g.Board().Clone()
	assert.Equal(t, InvalidColumn, g.AttemptMove(alice, 1))
	assert.Equal(t, before, g.Board())
	assert.Equal(t, alice, g.NextPlayer())

	// other columns are still playable
	assert.Equal(t, Accepted, g.AttemptMove(alice, 2))
}

func TestAttemptMove_Draw(t *testing.T) {
	g := newTestGame(t)

	outcomes := playColumns(t, g, drawSequence...)
	require.Len(t, outcomes, Cells)

	for i, o := range outcomes[:Cells-1] {
		assert.Equal(t, Accepted, o, "move %d", i+1)
	}
	assert.Equal(t, Draw, outcomes[Cells-1])
	assert.Equal(t, 0, g.Board().CountEmpty())

	result, ok := g.Result()
	assert.True(t, ok)
	assert.Equal(t, Draw, result)
}

func TestAttemptMove_AfterTerminalOutcome(t *testing.T) {
	g := newTestGame(t)
	playColumns(t, g, 1, 2, 1, 2, 1, 2, 1)
	require.True(t, g.IsOver())

	before := g.Board().Clone()
	assert.Equal(t, GameOver, g.AttemptMove(g.NextPlayer(), 3))
	assert.Equal(t, before, g.Board())
}

func TestAttemptMove_EmptyCountAndAlternation(t *testing.T) {
	g := newTestGame(t)

	expected := alice
	for n, column := range drawSequence {
		require.Equal(t, Cells-n, g.Board().CountEmpty())
		require.Equal(t, expected, g.NextPlayer(), "ply %d", n+1)

		// a rejected move in between never changes anything
		other := bob
		if expected == bob {
			other = alice
		}
		require.Equal(t, WrongPlayer, g.AttemptMove(other, column))
		require.Equal(t, Cells-n, g.Board().CountEmpty())

		g.AttemptMove(expected, column)
		if expected == alice {
			expected = bob
		} else {
			expected = alice
		}
	}
	assert.Equal(t, 0, g.Board().CountEmpty())
}

func TestAttemptMove_WinDetectedOnFourthToken(t *testing.T) {
	g := newTestGame(t)

	// A builds 1-2-3 along the bottom row, B answers on top of A
	outcomes := playColumns(t, g, 1, 1, 2, 2, 3, 3)
	for _, o := range outcomes {
		require.Equal(t, Accepted, o)
	}
	assert.False(t, HasFour(g.Board()))

	assert.Equal(t, WinA, g.AttemptMove(alice, 4))
	last, ok := g.LastMove()
	require.True(t, ok)
	assert.Equal(t, Index(3, Rows-1), last)
}

func TestNewGameFromBoard(t *testing.T) {
	b := mustParse(t,
		".......",
		".......",
		".......",
		".......",
		"...B...",
		"..AA...",
	)

	g, err := NewGameFromBoard(alice, bob, b)
	require.NoError(t, err)
	assert.Equal(t, bob, g.NextPlayer())
	assert.Equal(t, Cells-3, g.Board().CountEmpty())

	assert.Equal(t, Accepted, g.AttemptMove(bob, 1))
	assert.Equal(t, Empty, b.Cell(0, 5), "source board is not mutated")

	_, err = NewGameFromBoard(alice, bob, mustParse(t,
		".......",
		".......",
		".......",
		".......",
		"...B...",
		"...A...",
	).Clone())
	assert.NoError(t, err)

	_, err = NewGameFromBoard(alice, bob, mustParse(t,
		".......",
		".......",
		".......",
		"...A...",
		".......",
		".......",
	))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
