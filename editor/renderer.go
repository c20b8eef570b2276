package editor

import "github.com/lixenwraith/gridedit/core"

// Renderer abstracts the display and keyboard
// Coordinates are grid coordinates; the implementation maps them to the screen
type Renderer interface {
	// Clear blanks the pending frame
	Clear()

	// DrawChar places one grid cell in the pending frame
	DrawChar(row, col int, ch byte)

	// MoveCursorTo positions the visible cursor
	MoveCursorTo(row, col int)

	// Status sets the status line text
	Status(msg string)

	// Show presents the pending frame
	Show()

	// ReadKey blocks until the next input event
	ReadKey() (Key, error)

	// Close restores the terminal. Safe to call multiple times
	Close()
}

// Bell signals an edit that had no effect
type Bell interface {
	Ring()
}

type silentBell struct{}

func (silentBell) Ring() {}

// draw performs a full redraw of grid and cursor
func draw(r Renderer, g *core.Grid, cur core.Position, status string) {
	r.Clear()
	for row := 0; row < g.Rows(); row++ {
		line := g.Row(row)
		for col := 0; col < len(line); col++ {
			if line[col] == core.Blank {
				continue
			}
			r.DrawChar(row, col, line[col])
		}
	}
	r.Status(status)
	r.MoveCursorTo(cur.Row, cur.Col)
	r.Show()
}
