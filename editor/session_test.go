package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lixenwraith/gridedit/core"
	"github.com/lixenwraith/gridedit/store"
)

// recordingRenderer replays scripted keys and records what was drawn
type recordingRenderer struct {
	keys    []Key
	frame   map[core.Position]byte
	cursor  core.Position
	status  string
	shows   int
	clears  int
	closed  int
	readErr error
}

func newRecordingRenderer(keys ...Key) *recordingRenderer {
	return &recordingRenderer{keys: keys, frame: make(map[core.Position]byte)}
}

func (r *recordingRenderer) Clear() {
	r.clears++
	r.frame = make(map[core.Position]byte)
}

func (r *recordingRenderer) DrawChar(row, col int, ch byte) {
	r.frame[core.Position{Row: row, Col: col}] = ch
}

func (r *recordingRenderer) MoveCursorTo(row, col int) {
	r.cursor = core.Position{Row: row, Col: col}
}

func (r *recordingRenderer) Status(msg string) { r.status = msg }
func (r *recordingRenderer) Show() { r.shows++ }
func (r *recordingRenderer) Close() { r.closed++ }

func (r *recordingRenderer) ReadKey() (Key, error) {
	if len(r.keys) == 0 {
		if r.readErr != nil {
			return Key{}, r.readErr
		}
		return Key{}, io.EOF
	}
	k := r.keys[0]
	r.keys = r.keys[1:]
	return k, nil
}

func typeString(s string) []Key {
	keys := make([]Key, 0, len(s))
	for i := 0; i < len(s); i++ {
		keys = append(keys, Char(s[i]))
	}
	return keys
}

type countingBell struct{ rings int }

func (b *countingBell) Ring() { b.rings++ }

// failingStore wraps a MemoryStore and injects errors per operation
type failingStore struct {
	*store.MemoryStore
	saveErr, loadErr, allocErr error
}

func (f *failingStore) Save(ctx context.Context, id int64, content string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(ctx, id, content)
}

func (f *failingStore) Load(ctx context.Context, id int64) (string, error) {
	if f.loadErr != nil {
		return "", f.loadErr
	}
	return f.MemoryStore.Load(ctx, id)
}

func (f *failingStore) AllocateID(ctx context.Context) (int64, error) {
	if f.allocErr != nil {
		return 0, f.allocErr
	}
	return f.MemoryStore.AllocateID(ctx)
}

func TestSessionEndToEnd(t *testing.T) {
	const rows, cols = 100, 100
	ctx := context.Background()
	st := store.NewMemoryStore()

	keys := typeString("hi")
	keys = append(keys, Key{Kind: KeyEnter})
	keys = append(keys, typeString("bye")...)
	keys = append(keys, Key{Kind: KeyEscape})
	r := newRecordingRenderer(keys...)

	s := NewSession(st, rows, cols)
	err := s.Run(ctx, Request{Mode: ModeNew}, func() (Renderer, error) { return r, nil })
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if s.ID() != 1 {
		t.Errorf("Expected id 1 on empty store, got %d", s.ID())
	}
	if s.State() != StateClosed {
		t.Errorf("Expected Closed, got %s", s.State())
	}
	if r.closed == 0 {
		t.Error("Expected renderer to be closed")
	}

	content, err := st.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	lines := strings.Split(content, "\n")
	if len(lines) != rows {
		t.Fatalf("Expected %d rows, got %d", rows, len(lines))
	}
	if want := "hi" + strings.Repeat(" ", cols-2); lines[0] != want {
		t.Errorf("Row 0 = %q", lines[0])
	}
	if want := "bye" + strings.Repeat(" ", cols-3); lines[1] != want {
		t.Errorf("Row 1 = %q", lines[1])
	}
	for i := 2; i < rows; i++ {
		if lines[i] != strings.Repeat(" ", cols) {
			t.Fatalf("Row %d not blank", i)
		}
	}
	if content != s.Content() {
		t.Error("Stored content differs from session content")
	}
}

func TestSessionRedrawsAfterEveryKey(t *testing.T) {
	keys := append(typeString("ab"), Key{Kind: KeyLeft}, Key{Kind: KeyNone}, Key{Kind: KeyEscape})
	r := newRecordingRenderer(keys...)

	s := NewSession(store.NewMemoryStore(), 5, 5)
	if err := s.Resolve(context.Background(), Request{Mode: ModeNew}); err != nil {
		t.Fatal(err)
	}
	if err := s.Edit(r); err != nil {
		t.Fatal(err)
	}

	// Initial frame plus one per non-Escape key
	if r.shows != 5 {
		t.Errorf("Expected 5 frames, got %d", r.shows)
	}
	if r.shows != r.clears {
		t.Errorf("Every frame must start with Clear: %d clears, %d shows", r.clears, r.shows)
	}
	if r.frame[core.Position{Row: 0, Col: 0}] != 'a' || r.frame[core.Position{Row: 0, Col: 1}] != 'b' {
		t.Errorf("Frame missing typed text: %v", r.frame)
	}
	if r.cursor != (core.Position{Row: 0, Col: 1}) {
		t.Errorf("Expected cursor at (0,1), got %v", r.cursor)
	}
	if s.State() != StatePersisting {
		t.Errorf("Expected Persisting after Escape, got %s", s.State())
	}
}

func TestSessionLoadExisting(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	seed := core.NewGrid(4, 6)
	seed.Deserialize("hello\nworld")
	if err := st.Save(ctx, 7, seed.Serialize()); err != nil {
		t.Fatal(err)
	}

	s := NewSession(st, 4, 6)
	if err := s.Resolve(ctx, Request{Mode: ModeLoad, ID: 7}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if s.ID() != 7 {
		t.Errorf("Expected id 7, got %d", s.ID())
	}
	if s.Warning() != "" {
		t.Errorf("Unexpected warning %q", s.Warning())
	}
	if got := s.Grid().Row(1); got != "world " {
		t.Errorf("Row 1 = %q", got)
	}
}

func TestSessionLoadMissingStartsEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	r := newRecordingRenderer(Char('x'), Key{Kind: KeyEscape})

	s := NewSession(st, 3, 3)
	err := s.Run(ctx, Request{Mode: ModeLoad, ID: 12}, func() (Renderer, error) { return r, nil })
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if s.Warning() == "" {
		t.Error("Expected a warning for a missing document")
	}
	got, err := st.Load(ctx, 12)
	if err != nil {
		t.Fatalf("Expected document saved under requested id: %v", err)
	}
	if got != "x  \n   \n   " {
		t.Errorf("Unexpected content %q", got)
	}
}

func TestSessionWarningShownThenCleared(t *testing.T) {
	r := newRecordingRenderer()
	s := NewSession(store.NewMemoryStore(), 3, 3)
	if err := s.Resolve(context.Background(), Request{Mode: ModeLoad, ID: 3}); err != nil {
		t.Fatal(err)
	}

	s.redraw(r)
	if !strings.Contains(r.status, "not found") {
		t.Errorf("Expected warning in status, got %q", r.status)
	}

	s.Dispatch(Key{Kind: KeyRight})
	s.redraw(r)
	if strings.Contains(r.status, "not found") {
		t.Errorf("Expected warning cleared after a key, got %q", r.status)
	}
}

func TestSessionResolveErrors(t *testing.T) {
	readErr := errors.Join(store.ErrReadFailed, errors.New("disk gone"))

	tests := []struct {
		name    string
		store   *failingStore
		req     Request
		wantErr error
	}{
		{"load failure", &failingStore{MemoryStore: store.NewMemoryStore(), loadErr: readErr}, Request{Mode: ModeLoad, ID: 1}, store.ErrReadFailed},
		{"alloc failure", &failingStore{MemoryStore: store.NewMemoryStore(), allocErr: readErr}, Request{Mode: ModeNew}, store.ErrReadFailed},
		{"zero id", &failingStore{MemoryStore: store.NewMemoryStore()}, Request{Mode: ModeLoad, ID: 0}, ErrInvalidID},
		{"bad mode", &failingStore{MemoryStore: store.NewMemoryStore()}, Request{Mode: Mode(9)}, ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened := false
			s := NewSession(tt.store, 3, 3)
			err := s.Run(context.Background(), tt.req, func() (Renderer, error) {
				opened = true
				return newRecordingRenderer(), nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if opened {
				t.Error("Renderer must not open when resolution fails")
			}
			if tt.store.Len() != 0 {
				t.Error("Nothing should be saved")
			}
		})
	}
}

func TestSessionSaveFailureStillClosesRenderer(t *testing.T) {
	st := &failingStore{
		MemoryStore: store.NewMemoryStore(),
		saveErr:     errors.Join(store.ErrWriteFailed, errors.New("read-only")),
	}
	r := newRecordingRenderer(Char('a'), Key{Kind: KeyEscape})

	s := NewSession(st, 2, 2)
	err := s.Run(context.Background(), Request{Mode: ModeNew}, func() (Renderer, error) { return r, nil })
	if !errors.Is(err, store.ErrWriteFailed) {
		t.Errorf("Expected ErrWriteFailed, got %v", err)
	}
	if r.closed == 0 {
		t.Error("Renderer must be closed after a failed save")
	}
	if s.State() != StateClosed {
		t.Errorf("Expected Closed, got %s", s.State())
	}
}

func TestSessionInputFailurePersists(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	r := newRecordingRenderer(Char('z'))
	r.readErr = errors.New("tty lost")

	s := NewSession(st, 2, 2)
	err := s.Run(ctx, Request{Mode: ModeNew}, func() (Renderer, error) { return r, nil })
	if err == nil || !strings.Contains(err.Error(), "tty lost") {
		t.Errorf("Expected input error, got %v", err)
	}
	if !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput, got %v", err)
	}

	got, loadErr := st.Load(ctx, 1)
	if loadErr != nil {
		t.Fatalf("Expected edits saved despite input failure: %v", loadErr)
	}
	if got != "z \n  " {
		t.Errorf("Unexpected content %q", got)
	}
}

func TestSessionRendererOpenFailure(t *testing.T) {
	st := store.NewMemoryStore()
	s := NewSession(st, 2, 2)
	err := s.Run(context.Background(), Request{Mode: ModeNew}, func() (Renderer, error) {
		return nil, errors.New("no tty")
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if st.Len() != 0 {
		t.Error("Nothing should be saved without an editing phase")
	}
}

func TestSessionPhaseOrder(t *testing.T) {
	s := NewSession(store.NewMemoryStore(), 2, 2)

	if err := s.Edit(newRecordingRenderer()); !errors.Is(err, ErrWrongState) {
		t.Errorf("Edit before Resolve: expected ErrWrongState, got %v", err)
	}
	if err := s.Persist(context.Background()); !errors.Is(err, ErrWrongState) {
		t.Errorf("Persist before Edit: expected ErrWrongState, got %v", err)
	}
	if err := s.Resolve(context.Background(), Request{Mode: ModeNew}); err != nil {
		t.Fatal(err)
	}
	if err := s.Resolve(context.Background(), Request{Mode: ModeNew}); !errors.Is(err, ErrWrongState) {
		t.Errorf("Second Resolve: expected ErrWrongState, got %v", err)
	}
}

func TestSessionBellOnNoOp(t *testing.T) {
	bell := &countingBell{}
	s := NewSession(store.NewMemoryStore(), 2, 2, WithBell(bell))

	s.Dispatch(Key{Kind: KeyUp})        // boundary
	s.Dispatch(Key{Kind: KeyLeft})      // boundary
	s.Dispatch(Key{Kind: KeyBackspace}) // origin
	if bell.rings != 3 {
		t.Errorf("Expected 3 rings, got %d", bell.rings)
	}

	s.Dispatch(Key{Kind: KeyDown})
	s.Dispatch(Char('a'))
	s.Dispatch(Char('b')) // last column, overwrite still counts as an edit
	s.Dispatch(Key{Kind: KeyNone})
	if bell.rings != 3 {
		t.Errorf("Expected no further rings, got %d", bell.rings)
	}
}

func TestSessionDispatchRowJoin(t *testing.T) {
	s := NewSession(store.NewMemoryStore(), 3, 8)
	for _, k := range append(typeString("hi"), Key{Kind: KeyEnter}, Key{Kind: KeyBackspace}) {
		s.Dispatch(k)
	}

	if got := s.Cursor().Position(); got != (core.Position{Row: 0, Col: 1}) {
		t.Errorf("Expected (0,1), got %v", got)
	}
	if got := s.Grid().Row(0); got != "h       " {
		t.Errorf("Row 0 = %q", got)
	}
}

func TestSessionInputFailureAndSaveFailure(t *testing.T) {
	st := &failingStore{
		MemoryStore: store.NewMemoryStore(),
		saveErr:     errors.Join(store.ErrWriteFailed, errors.New("disk full")),
	}
	r := newRecordingRenderer(Char('q'))
	r.readErr = errors.New("tty lost")

	s := NewSession(st, 2, 2)
	err := s.Run(context.Background(), Request{Mode: ModeNew}, func() (Renderer, error) { return r, nil })
	if !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput in %v", err)
	}
	if !errors.Is(err, store.ErrWriteFailed) {
		t.Errorf("Expected ErrWriteFailed in %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("Expected nothing stored, got %d documents", st.Len())
	}
}
