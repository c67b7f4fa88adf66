package engine

// Board is the fixed 6x7 grid, stored row-major with row 0 at the top.
type Board struct {
	cells [Cells]Token
	empty int
}

// NewBoard returns an empty board
func NewBoard() *Board {
	return &Board{empty: Cells}
}

// Index converts a 0-based column and row into a cell index
func Index(column, row int) int {
	return row*Columns + column
}

// Position converts a cell index back into its column and row
func Position(index int) (column, row int) {
	return index % Columns, index / Columns
}

// InBounds reports whether the 0-based column and row lie on the board
func InBounds(column, row int) bool {
	return column >= 0 && column < Columns && row >= 0 && row < Rows
}

// Cell returns the token at a 0-based column and row.
// Out of range coordinates read as Empty.
func (b *Board) Cell(column, row int) Token {
	if !InBounds(column, row) {
		return Empty
	}
	return b.cells[Index(column, row)]
}

// At returns the token stored at a cell index
func (b *Board) At(index int) Token {
	if index < 0 || index >= Cells {
		return Empty
	}
	return b.cells[index]
}

// CountEmpty returns the number of unoccupied cells
func (b *Board) CountEmpty() int {
	return b.empty
}

// ColumnFull reports whether the top cell of a 0-based column is taken
func (b *Board) ColumnFull(column int) bool {
	return b.Cell(column, 0) != Empty
}

// Rows returns a copy of the grid, top row first
func (b *Board) Rows() [][]Token {
	grid := make([][]Token, Rows)
	for row := 0; row < Rows; row++ {
		grid[row] = make([]Token, Columns)
		copy(grid[row], b.cells[row*Columns:(row+1)*Columns])
	}
	return grid
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// set writes a token into an empty cell. Occupied cells are never rewritten.
func (b *Board) set(index int, token Token) bool {
	if index < 0 || index >= Cells || token == Empty || b.cells[index] != Empty {
		return false
	}
	b.cells[index] = token
	b.empty--
	return true
}
