package engine

// axis is a scan direction expressed as column and row steps
type axis struct {
	dc, dr int
}

var axes = []axis{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal, down-right
	{1, -1}, // diagonal, up-right
}

// isWinningMove reports whether the token at index is part of a line of
// ToWin or more equal tokens.
func isWinningMove(b *Board, index int) bool {
	target := b.At(index)
	if target == Empty {
		return false
	}

	column, row := Position(index)
	for _, a := range axes {
		inARow := 1 + run(b, column, row, a.dc, a.dr, target) + run(b, column, row, -a.dc, -a.dr, target)
		if inARow >= ToWin {
			return true
		}
	}
	return false
}

// run counts consecutive target tokens starting next to (column, row) and
// stepping by (dc, dr). Every step must stay inside the board by row and
// column, so a scan never wraps from one row edge onto the next row.
func run(b *Board, column, row, dc, dr int, target Token) int {
	count := 0
	c, r := column+dc, row+dr
	for InBounds(c, r) && b.Cell(c, r) == target {
		count++
		c += dc
		r += dr
	}
	return count
}

// HasFour reports whether any line of four exists anywhere on the board
func HasFour(b *Board) bool {
	for i := 0; i < Cells; i++ {
		if isWinningMove(b, i) {
			return true
		}
	}
	return false
}
