package engine

// landingIndex returns the cell a token dropped into the 0-based column comes
// to rest in: walking down from the top, the last empty cell before the bottom
// edge or an occupied cell. ok is false when the column is already full.
func landingIndex(b *Board, column int) (index int, ok bool) {
	if column < 0 || column >= Columns || b.ColumnFull(column) {
		return -1, false
	}

	row := 0
	for row+1 < Rows && b.Cell(column, row+1) == Empty {
		row++
	}
	return Index(column, row), true
}
