package core

import (
	"errors"
	"strings"
)

// DefaultRows and DefaultCols are the grid dimensions used when no configuration overrides them
const (
	DefaultRows = 100
	DefaultCols = 100
)

// Blank is the fill byte of every empty cell
const Blank byte = ' '

// ErrOutOfRange is returned by grid accessors for indices outside the grid
var ErrOutOfRange = errors.New("grid index out of range")

// Position is a (row, col) coordinate inside a grid
type Position struct {
	Row, Col int
}

// Grid is a fixed rows x cols buffer of single-byte cells
type Grid struct {
	rows  int
	cols  int
	cells []byte // Row-major: cells[row*cols + col]
}

// NewGrid creates a grid filled with blanks
// Non-positive dimensions are raised to 1
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	g := &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]byte, rows*cols),
	}
	g.Reset()
	return g
}

// Rows returns the grid height
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the grid width
func (g *Grid) Cols() int {
	return g.cols
}

// Reset fills every cell with a blank
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = Blank
	}
}

// InBounds reports whether (row, col) addresses a cell
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Get returns the cell at (row, col)
func (g *Grid) Get(row, col int) (byte, error) {
	if !g.InBounds(row, col) {
		return 0, ErrOutOfRange
	}
	return g.cells[row*g.cols+col], nil
}

// Set overwrites the cell at (row, col); neighbors are never shifted
func (g *Grid) Set(row, col int, ch byte) error {
	if !g.InBounds(row, col) {
		return ErrOutOfRange
	}
	g.cells[row*g.cols+col] = ch
	return nil
}

// Row returns a copy of one row, empty string if out of range
func (g *Grid) Row(row int) string {
	if row < 0 || row >= g.rows {
		return ""
	}
	start := row * g.cols
	return string(g.cells[start : start+g.cols])
}

// Clamp pulls an arbitrary position into the grid
func (g *Grid) Clamp(p Position) Position {
	p.Row = clamp(p.Row, 0, g.rows-1)
	p.Col = clamp(p.Col, 0, g.cols-1)
	return p
}

// Serialize renders every row padded to the full width, joined by '\n' with no trailing newline
func (g *Grid) Serialize() string {
	var sb strings.Builder
	sb.Grow(g.rows*(g.cols+1) - 1)
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		start := row * g.cols
		sb.Write(g.cells[start : start+g.cols])
	}
	return sb.String()
}

// Deserialize resets the grid and copies text into it line by line
// Bytes past the last column and lines past the last row are dropped
func (g *Grid) Deserialize(text string) {
	g.Reset()

	row, col := 0, 0
	for i := 0; i < len(text) && row < g.rows; i++ {
		ch := text[i]
		if ch == '\n' {
			row++
			col = 0
			continue
		}
		if col < g.cols {
			g.cells[row*g.cols+col] = ch
		}
		col++
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
