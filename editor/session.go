package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/gridedit/core"
	"github.com/lixenwraith/gridedit/store"
)

// State is the session lifecycle phase
type State uint8

const (
	StateResolving State = iota
	StateEditing
	StatePersisting
	StateClosed
)

var stateNames = [...]string{"Resolving", "Editing", "Persisting", "Closed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

var (
	// ErrWrongState is returned when a phase method is called out of order
	ErrWrongState = errors.New("session in wrong state")
	// ErrInput marks a renderer that stopped delivering keys during Editing
	ErrInput = errors.New("input failed")
)

// Session runs one document through Resolving, Editing, Persisting and Closed
// It exclusively owns its grid and cursor for its lifetime
type Session struct {
	store   store.DocumentStore
	grid    *core.Grid
	cursor  *Cursor
	bell    Bell
	timeout time.Duration

	state   State
	id      int64
	warning string
	message string // Status text until the next key
}

// Option configures a Session
type Option func(*Session)

// WithBell rings b on edits that change nothing
func WithBell(b Bell) Option {
	return func(s *Session) {
		if b != nil {
			s.bell = b
		}
	}
}

// WithTimeout bounds each store call
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// NewSession creates a session over an empty rows x cols grid
func NewSession(st store.DocumentStore, rows, cols int, opts ...Option) *Session {
	g := core.NewGrid(rows, cols)
	s := &Session{
		store:  st,
		grid:   g,
		cursor: NewCursor(g),
		bell:   silentBell{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current phase
func (s *Session) State() State { return s.state }

// ID returns the resolved document id, 0 before resolution
func (s *Session) ID() int64 { return s.id }

// Grid returns the edited grid
func (s *Session) Grid() *core.Grid { return s.grid }

// Cursor returns the cursor controller
func (s *Session) Cursor() *Cursor { return s.cursor }

// Warning returns the non-fatal resolution warning, if any
func (s *Session) Warning() string { return s.warning }

// Content returns the serialized grid
func (s *Session) Content() string { return s.grid.Serialize() }

// Resolve obtains the document id and seeds the grid
// A missing document is not fatal: the grid stays empty and a warning is set
func (s *Session) Resolve(ctx context.Context, req Request) error {
	if s.state != StateResolving {
		return fmt.Errorf("%w: resolve in %s", ErrWrongState, s.state)
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	switch req.Mode {
	case ModeNew:
		id, err := s.store.AllocateID(ctx)
		if err != nil {
			return fmt.Errorf("allocate id: %w", err)
		}
		s.id = id
		log.Printf("session: new document %d", id)

	case ModeLoad:
		if req.ID <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidID, req.ID)
		}
		content, err := s.store.Load(ctx, req.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.warning = fmt.Sprintf("document %d not found, starting empty", req.ID)
			log.Printf("session: %s", s.warning)
		case err != nil:
			return fmt.Errorf("load document %d: %w", req.ID, err)
		default:
			s.grid.Deserialize(content)
			log.Printf("session: loaded document %d (%d bytes)", req.ID, len(content))
		}
		s.id = req.ID

	default:
		return fmt.Errorf("%w: unknown mode %d", ErrUsage, req.Mode)
	}

	s.message = s.warning
	s.state = StateEditing
	return nil
}

// Edit runs the interactive loop until Escape or an input failure
// Either way the session moves to Persisting; an input failure is returned
func (s *Session) Edit(r Renderer) error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: edit in %s", ErrWrongState, s.state)
	}

	s.redraw(r)
	for {
		key, err := r.ReadKey()
		if err != nil {
			s.state = StatePersisting
			log.Printf("session: input failed: %v", err)
			return fmt.Errorf("%w: read key: %w", ErrInput, err)
		}

		if key.Kind == KeyEscape {
			s.state = StatePersisting
			return nil
		}

		s.Dispatch(key)
		s.redraw(r)
	}
}

// Dispatch applies one key to the cursor and grid
// Escape is not handled here; Edit owns the transition out of Editing
func (s *Session) Dispatch(key Key) core.Position {
	before := s.cursor.Position()
	s.message = ""

	var after core.Position
	switch key.Kind {
	case KeyUp:
		after = s.cursor.Up()
	case KeyDown:
		after = s.cursor.Down()
	case KeyLeft:
		after = s.cursor.Left()
	case KeyRight:
		after = s.cursor.Right()
	case KeyEnter:
		after = s.cursor.Newline()
	case KeyBackspace:
		after = s.cursor.Delete()
	case KeyChar:
		return s.cursor.Insert(key.Ch)
	default:
		return before
	}

	if after == before {
		s.bell.Ring()
	}
	return after
}

// Persist serializes the grid and saves it under the resolved id
func (s *Session) Persist(ctx context.Context) error {
	if s.state != StatePersisting {
		return fmt.Errorf("%w: persist in %s", ErrWrongState, s.state)
	}
	if s.id <= 0 {
		log.Printf("session: no document id, nothing saved")
		return nil
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	content := s.grid.Serialize()
	if err := s.store.Save(ctx, s.id, content); err != nil {
		log.Printf("session: save document %d failed: %v", s.id, err)
		return fmt.Errorf("save document %d: %w", s.id, err)
	}
	log.Printf("session: saved document %d", s.id)
	return nil
}

// Run drives the full lifecycle; open is called only after resolution succeeds
// The renderer is closed on every path once opened
func (s *Session) Run(ctx context.Context, req Request, open func() (Renderer, error)) error {
	defer func() { s.state = StateClosed }()

	if err := s.Resolve(ctx, req); err != nil {
		return err
	}

	r, err := open()
	if err != nil {
		return fmt.Errorf("open renderer: %w", err)
	}
	defer r.Close()

	editErr := s.Edit(r)
	saveErr := s.Persist(ctx)
	r.Close()

	return errors.Join(editErr, saveErr)
}

func (s *Session) redraw(r Renderer) {
	draw(r, s.grid, s.cursor.Position(), s.status())
}

func (s *Session) status() string {
	pos := s.cursor.Position()
	line := fmt.Sprintf("doc %d  %d:%d  ESC save+quit", s.id, pos.Row+1, pos.Col+1)
	if s.message != "" {
		line += "  | " + s.message
	}
	return line
}

func (s *Session) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
