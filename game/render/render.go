// Package render turns game snapshots into the text board shown to players:
// a keycap column header, one glyph per cell and a status footer.
package render

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
	"github.com/wricardo/mcp-training/connectfour/game/service"
)

// ColumnKeys are the header glyphs, one per column, left to right
var ColumnKeys = [engine.Columns]string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣"}

// Cell glyphs
const (
	EmptyGlyph  = "⚫"
	TokenAGlyph = "🔴"
	TokenBGlyph = "⚪"
)

// Player colors as shown in the footer
const (
	ColorA = "red"
	ColorB = "white"
)

// Glyph returns the glyph for a token
func Glyph(t engine.Token) string {
	switch t {
	case engine.TokenA:
		return TokenAGlyph
	case engine.TokenB:
		return TokenBGlyph
	default:
		return EmptyGlyph
	}
}

// Title renders the heading of a game
func Title(s *service.Snapshot) string {
	if s.Status == service.StatusWaiting {
		return fmt.Sprintf("%s wants to start a game of Connect 4", s.PlayerA)
	}
	return fmt.Sprintf("Connect 4: %s VS %s", s.PlayerA, s.PlayerB)
}

// Board renders the column header followed by one line per row, top first
func Board(s *service.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(ColumnKeys[:], ""))
	sb.WriteByte('\n')

	for _, row := range s.Board {
		for _, cell := range row {
			sb.WriteString(Glyph(cell))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Footer renders whose turn it is, or how the game ended
func Footer(s *service.Snapshot) string {
	switch s.Status {
	case service.StatusWaiting:
		return fmt.Sprintf("join game %s to play!", s.Key)
	case service.StatusFinished:
		if s.Result == nil {
			return ""
		}
		switch *s.Result {
		case engine.Draw:
			return "The game was a draw!!"
		case engine.WinA, engine.WinB:
			return fmt.Sprintf("%s has won the game", s.Winner)
		}
		return ""
	default:
		color := ColorA
		if s.NextPlayer == s.PlayerB {
			color = ColorB
		}
		return fmt.Sprintf("Next Up: %s (%s)", s.NextPlayer, color)
	}
}

// Message renders title, board and footer as one block
func Message(s *service.Snapshot) string {
	return Title(s) + "\n" + Board(s) + Footer(s)
}
