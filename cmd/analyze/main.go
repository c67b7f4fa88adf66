// Command analyze prints quick, human-readable facts about the board
// positions in the positions directory. For each file it summarizes token
// counts, the side to move, full columns and the columns where the side to
// move completes four in a row right away.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
	"github.com/wricardo/mcp-training/connectfour/game/render"
	"github.com/wricardo/mcp-training/connectfour/game/service"
)

// Analysis summarizes a single position file.
type Analysis struct {
	Name           string
	Board          *engine.Board
	CountA         int
	CountB         int
	Empty          int
	ToMove         engine.Token
	FullColumns    []int
	WinningColumns []int
	Problem        error
}

func main() {
	dir := "positions"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding position files: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzePosition(os.Stdout, file)
	}
}

func analyzePosition(w io.Writer, path string) {
	analysis, err := analyze(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Name: %s\n", analysis.Name)
	fmt.Fprint(w, render.Board(&service.Snapshot{Board: analysis.Board.Rows()}))
	fmt.Fprintf(w, "Tokens: A=%d B=%d, empty cells: %d\n", analysis.CountA, analysis.CountB, analysis.Empty)

	if analysis.Problem != nil {
		fmt.Fprintf(w, "⚠️  Not reachable by legal play: %v\n", analysis.Problem)
		return
	}

	fmt.Fprintf(w, "To move: %s\n", analysis.ToMove)
	fmt.Fprintf(w, "Full columns: %s\n", formatColumns(analysis.FullColumns))
	if len(analysis.WinningColumns) > 0 {
		fmt.Fprintf(w, "🏁 %s wins by dropping in column %s\n", analysis.ToMove, formatColumns(analysis.WinningColumns))
	} else {
		fmt.Fprintln(w, "No immediate win")
	}
}

// analyze loads a position and computes its summary. Positions that parse but
// could not come from legal play are returned with Problem set.
func analyze(path string) (*Analysis, error) {
	pf, board, err := engine.LoadPosition(path)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Name:        pf.Name,
		Board:       board,
		CountA:      engine.CountTokens(board, engine.TokenA),
		CountB:      engine.CountTokens(board, engine.TokenB),
		Empty:       board.CountEmpty(),
		FullColumns: engine.FullColumns(board),
	}

	if err := engine.ValidateBoard(board); err != nil {
		analysis.Problem = err
		return analysis, nil
	}

	analysis.ToMove = engine.TokenA
	if analysis.Empty%2 == 1 {
		analysis.ToMove = engine.TokenB
	}
	analysis.WinningColumns = winningColumns(board)
	return analysis, nil
}

// winningColumns tries every column for the side to move
func winningColumns(board *engine.Board) []int {
	var wins []int
	for column := engine.MinColumn; column <= engine.MaxColumn; column++ {
		g, err := engine.NewGameFromBoard("A", "B", board)
		if err != nil {
			return nil
		}
		switch g.AttemptMove(g.NextPlayer(), column) {
		case engine.WinA, engine.WinB:
			wins = append(wins, column)
		}
	}
	return wins
}

func formatColumns(columns []int) string {
	if len(columns) == 0 {
		return "none"
	}
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprint(c)
	}
	return strings.Join(parts, ", ")
}
