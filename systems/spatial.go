package systems

import (
	"slices"
)

// ContactGrid buckets one team's contacts by cell for radius queries.
// It stores contact indices, so a query can hand back contacts in their
// original order.
type ContactGrid struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]int
}

// NewContactGrid creates a grid covering the given world size.
func NewContactGrid(width, height, cellSize float32) *ContactGrid {
	cols := max(int(width/cellSize)+1, 1)
	rows := max(int(height/cellSize)+1, 1)

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &ContactGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all contacts from the grid.
func (g *ContactGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds contact index i at the given position.
func (g *ContactGrid) Insert(i int, x, y float32) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], i)
}

// QueryInto appends to dst the indices of every contact in a cell touched
// by the circle at (x, y), sorted ascending. The result is a superset of
// the contacts within radius; callers do the exact distance test.
func (g *ContactGrid) QueryInto(dst []int, x, y, radius float32) []int {
	start := len(dst)
	minCol, minRow := g.cell(x-radius, y-radius)
	maxCol, maxRow := g.cell(x+radius, y+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}

	slices.Sort(dst[start:])
	return dst
}

// cell returns the clamped cell coordinates of a world position.
func (g *ContactGrid) cell(x, y float32) (col, row int) {
	col = min(max(int(x/g.cellSize), 0), g.cols-1)
	row = min(max(int(y/g.cellSize), 0), g.rows-1)
	return col, row
}
