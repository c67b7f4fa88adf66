package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	alice PlayerID = "alice"
	bob   PlayerID = "bob"
)

// drawSequence fills the board without ever forming four in a row
var drawSequence = []int{
	6, 4, 3, 4, 2, 6, 4, 2, 1, 2, 5, 2, 3, 6, 1, 6, 7, 7, 3, 1, 7,
	1, 5, 3, 4, 1, 4, 5, 3, 4, 3, 7, 1, 5, 2, 2, 6, 5, 5, 6, 7, 7,
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(alice, bob)
	require.NoError(t, err)
	return g
}

// playColumns plays the columns alternately for the players whose turn it is
// and returns every outcome.
func playColumns(t *testing.T, g *Game, columns ...int) []Outcome {
	t.Helper()
	outcomes := make([]Outcome, 0, len(columns))
	for _, column := range columns {
		outcomes = append(outcomes, g.AttemptMove(g.NextPlayer(), column))
	}
	return outcomes
}

func mustParse(t *testing.T, layout ...string) *Board {
	t.Helper()
	b, err := ParseBoard(layout)
	require.NoError(t, err)
	return b
}
