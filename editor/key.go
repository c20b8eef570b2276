package editor

// KeyKind classifies an input event
type KeyKind uint8

const (
	KeyNone KeyKind = iota // Resize or unsupported input; redraw only
	KeyChar                // Printable byte, see Key.Ch

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyEnter
	KeyBackspace
	KeyEscape
)

// Raw key codes as delivered by a terminal in raw mode
const (
	codeBackspaceCtrlH = 8
	codeLineFeed       = 10
	codeCarriageReturn = 13
	codeEscape         = 27
	codeDelete         = 127
)

// Key is one decoded input event
type Key struct {
	Kind KeyKind
	Ch   byte // Set only for KeyChar
}

// Char builds a KeyChar event
func Char(ch byte) Key {
	return Key{Kind: KeyChar, Ch: ch}
}

// KeyFromByte decodes a single raw input byte
func KeyFromByte(b byte) Key {
	switch {
	case b == codeLineFeed || b == codeCarriageReturn:
		return Key{Kind: KeyEnter}
	case b == codeEscape:
		return Key{Kind: KeyEscape}
	case b == codeBackspaceCtrlH || b == codeDelete:
		return Key{Kind: KeyBackspace}
	case IsPrintable(b):
		return Char(b)
	default:
		return Key{Kind: KeyNone}
	}
}

// IsPrintable reports whether b is a printable ASCII byte
func IsPrintable(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

var keyNames = map[KeyKind]string{
	KeyNone:      "None",
	KeyChar:      "Char",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyEscape:    "Escape",
}

// String returns the key kind name
func (k KeyKind) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}
