package editor

import (
	"log"

	"github.com/lixenwraith/gridedit/core"
)

// Cursor owns the edit position over a grid and applies movement and edit rules
// Every operation is total: the position never leaves the grid
type Cursor struct {
	grid *core.Grid
	pos  core.Position
}

// NewCursor places a cursor at the grid origin
func NewCursor(g *core.Grid) *Cursor {
	return &Cursor{grid: g}
}

// Position returns the current position
func (c *Cursor) Position() core.Position {
	return c.pos
}

// SetPosition moves the cursor, clamping into the grid
func (c *Cursor) SetPosition(p core.Position) core.Position {
	c.pos = c.grid.Clamp(p)
	return c.pos
}

// Up moves one row up, stopping at row 0
func (c *Cursor) Up() core.Position {
	if c.pos.Row > 0 {
		c.pos.Row--
	}
	return c.pos
}

// Down moves one row down, stopping at the last row
func (c *Cursor) Down() core.Position {
	if c.pos.Row < c.grid.Rows()-1 {
		c.pos.Row++
	}
	return c.pos
}

// Left moves one column left, stopping at column 0
func (c *Cursor) Left() core.Position {
	if c.pos.Col > 0 {
		c.pos.Col--
	}
	return c.pos
}

// Right moves one column right, stopping at the last column
func (c *Cursor) Right() core.Position {
	if c.pos.Col < c.grid.Cols()-1 {
		c.pos.Col++
	}
	return c.pos
}

// Newline moves to the start of the next row; the grid never grows
func (c *Cursor) Newline() core.Position {
	if c.pos.Row < c.grid.Rows()-1 {
		c.pos.Row++
		c.pos.Col = 0
	}
	return c.pos
}

// Insert overwrites the cell under the cursor and advances one column
// At the last column the cursor stays put, so repeated inserts overwrite the same cell
func (c *Cursor) Insert(ch byte) core.Position {
	c.set(c.pos.Row, c.pos.Col, ch)
	if c.pos.Col < c.grid.Cols()-1 {
		c.pos.Col++
	}
	return c.pos
}

// Delete clears the cell before the cursor
// At column 0 it joins onto the previous row: the cursor lands on the last
// non-blank cell of that row (or column 0) and that cell is cleared
func (c *Cursor) Delete() core.Position {
	switch {
	case c.pos.Col > 0:
		c.pos.Col--
	case c.pos.Row > 0:
		c.pos.Row--
		c.pos.Col = c.grid.Cols() - 1
		for c.pos.Col > 0 && c.get(c.pos.Row, c.pos.Col) == core.Blank {
			c.pos.Col--
		}
	default:
		return c.pos
	}

	c.set(c.pos.Row, c.pos.Col, core.Blank)
	return c.pos
}

func (c *Cursor) get(row, col int) byte {
	ch, err := c.grid.Get(row, col)
	if err != nil {
		log.Printf("cursor: read (%d, %d): %v", row, col, err)
		return core.Blank
	}
	return ch
}

func (c *Cursor) set(row, col int, ch byte) {
	if err := c.grid.Set(row, col, ch); err != nil {
		log.Printf("cursor: write (%d, %d): %v", row, col, err)
	}
}
