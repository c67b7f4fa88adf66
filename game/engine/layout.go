package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrInvalidLayout = errors.New("invalid board layout")

// PositionFile is the JSON form of a saved board position
type PositionFile struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Layout      []string `json:"layout"`
}

// ParseBoard builds a board from Rows strings of Columns characters, top row
// first. '.' is empty, 'A' and 'B' are the two tokens.
func ParseBoard(layout []string) (*Board, error) {
	if len(layout) != Rows {
		return nil, fmt.Errorf("%w: layout must have %d rows, got %d", ErrInvalidLayout, Rows, len(layout))
	}

	b := NewBoard()
	for row, line := range layout {
		if len(line) != Columns {
			return nil, fmt.Errorf("%w: row %d must have %d characters, got %d", ErrInvalidLayout, row+1, Columns, len(line))
		}
		for column, ch := range line {
			tok, err := parseToken(ch)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d, col %d: %v", ErrInvalidLayout, row+1, column+1, err)
			}
			if tok != Empty {
				b.set(Index(column, row), tok)
			}
		}
	}
	return b, nil
}

// FormatBoard renders a board back into layout strings
func FormatBoard(b *Board) []string {
	lines := make([]string, 0, Rows)
	for row := 0; row < Rows; row++ {
		var sb strings.Builder
		for column := 0; column < Columns; column++ {
			sb.WriteString(b.Cell(column, row).String())
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// ValidateBoard checks that a position is reachable by legal play: no token
// floats above an empty cell, TokenA has the same count as TokenB or one more,
// and no finished line is on the board.
func ValidateBoard(b *Board) error {
	if b == nil {
		return fmt.Errorf("%w: board cannot be nil", ErrInvalidLayout)
	}

	for column := 0; column < Columns; column++ {
		for row := 0; row < Rows-1; row++ {
			if b.Cell(column, row) != Empty && b.Cell(column, row+1) == Empty {
				return fmt.Errorf("%w: token at row %d, col %d is floating", ErrInvalidLayout, row+1, column+1)
			}
		}
	}

	a, bb := CountTokens(b, TokenA), CountTokens(b, TokenB)
	if a != bb && a != bb+1 {
		return fmt.Errorf("%w: token counts A=%d B=%d cannot come from alternating play", ErrInvalidLayout, a, bb)
	}

	if HasFour(b) {
		return fmt.Errorf("%w: position already contains four in a row", ErrInvalidLayout)
	}

	return nil
}

// LoadPosition reads and parses a position file
func LoadPosition(path string) (*PositionFile, *Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read position file: %w", err)
	}

	var pf PositionFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, nil, fmt.Errorf("failed to parse position file: %w", err)
	}

	b, err := ParseBoard(pf.Layout)
	if err != nil {
		return &pf, nil, err
	}
	return &pf, b, nil
}

// CountTokens counts the cells holding a given token
func CountTokens(b *Board, token Token) int {
	count := 0
	for i := 0; i < Cells; i++ {
		if b.At(i) == token {
			count++
		}
	}
	return count
}

// FullColumns returns the 1-based columns that cannot take another token
func FullColumns(b *Board) []int {
	var full []int
	for column := 0; column < Columns; column++ {
		if b.ColumnFull(column) {
			full = append(full, column+1)
		}
	}
	return full
}
