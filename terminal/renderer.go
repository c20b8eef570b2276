package terminal

import (
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridedit/core"
	"github.com/lixenwraith/gridedit/editor"
)

// ErrClosed is returned by ReadKey once the screen has been finalized
var ErrClosed = errors.New("terminal closed")

var (
	styleText   = tcell.StyleDefault
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// Renderer paints a grid onto a tcell screen
// Frames are staged in a shadow grid and painted on Show through a viewport
// that follows the cursor when the terminal is smaller than the grid
type Renderer struct {
	screen tcell.Screen
	frame  *core.Grid
	cursor core.Position
	status string

	// Viewport origin in grid coordinates
	top, left int

	closeOnce sync.Once
}

var _ editor.Renderer = (*Renderer)(nil)

// New initializes the real terminal for a rows x cols grid
func New(rows, cols int) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return NewWithScreen(screen, rows, cols), nil
}

// NewWithScreen wraps an already initialized screen
func NewWithScreen(screen tcell.Screen, rows, cols int) *Renderer {
	r := &Renderer{
		screen: screen,
		frame:  core.NewGrid(rows, cols),
	}
	screen.SetStyle(styleText)
	registerCrashScreen(r)
	return r
}

// Clear blanks the staged frame
func (r *Renderer) Clear() {
	r.frame.Reset()
}

// DrawChar stages one cell; out-of-grid cells are dropped
func (r *Renderer) DrawChar(row, col int, ch byte) {
	_ = r.frame.Set(row, col, ch)
}

// MoveCursorTo stages the cursor position
func (r *Renderer) MoveCursorTo(row, col int) {
	r.cursor = r.frame.Clamp(core.Position{Row: row, Col: col})
}

// Status stages the status line text
func (r *Renderer) Status(msg string) {
	r.status = msg
}

// Show paints the staged frame
func (r *Renderer) Show() {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}

	viewH := h
	if h > 1 {
		viewH = h - 1 // Last row is the status line
	}
	r.follow(viewH, w)

	r.screen.Clear()
	for y := 0; y < viewH; y++ {
		line := r.frame.Row(r.top + y)
		for x := 0; x < w && r.left+x < len(line); x++ {
			r.screen.SetContent(x, y, rune(line[r.left+x]), nil, styleText)
		}
	}

	if h > 1 {
		r.drawStatus(h-1, w)
	}

	r.screen.ShowCursor(r.cursor.Col-r.left, r.cursor.Row-r.top)
	r.screen.Show()
}

// ReadKey blocks for the next key; a resize yields KeyNone so the caller redraws
func (r *Renderer) ReadKey() (editor.Key, error) {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return editor.Key{}, ErrClosed
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			return translateKey(ev), nil
		case *tcell.EventResize:
			r.screen.Sync()
			return editor.Key{Kind: editor.KeyNone}, nil
		}
	}
}

// Close restores the terminal. Safe to call multiple times
func (r *Renderer) Close() {
	r.closeOnce.Do(func() {
		unregisterCrashScreen(r)
		r.screen.Fini()
	})
}

// Viewport returns the grid coordinates of the top-left visible cell
func (r *Renderer) Viewport() core.Position {
	return core.Position{Row: r.top, Col: r.left}
}

// follow scrolls the viewport the minimum needed to keep the cursor visible
func (r *Renderer) follow(viewH, viewW int) {
	if r.cursor.Row < r.top {
		r.top = r.cursor.Row
	} else if r.cursor.Row >= r.top+viewH {
		r.top = r.cursor.Row - viewH + 1
	}

	if r.cursor.Col < r.left {
		r.left = r.cursor.Col
	} else if r.cursor.Col >= r.left+viewW {
		r.left = r.cursor.Col - viewW + 1
	}
}

func (r *Renderer) drawStatus(y, w int) {
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(r.status) {
			ch = rune(r.status[x])
		}
		r.screen.SetContent(x, y, ch, nil, styleStatus)
	}
}

// translateKey maps a tcell key event onto the editor's key set
func translateKey(ev *tcell.EventKey) editor.Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return editor.Key{Kind: editor.KeyUp}
	case tcell.KeyDown:
		return editor.Key{Kind: editor.KeyDown}
	case tcell.KeyLeft:
		return editor.Key{Kind: editor.KeyLeft}
	case tcell.KeyRight:
		return editor.Key{Kind: editor.KeyRight}
	case tcell.KeyEnter, tcell.KeyLF:
		return editor.Key{Kind: editor.KeyEnter}
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		return editor.Key{Kind: editor.KeyBackspace}
	case tcell.KeyEscape:
		return editor.Key{Kind: editor.KeyEscape}
	case tcell.KeyRune:
		r := ev.Rune()
		if r < 0x80 && editor.IsPrintable(byte(r)) {
			return editor.Char(byte(r))
		}
	}
	return editor.Key{Kind: editor.KeyNone}
}
