package editor

import (
	"errors"
	"fmt"
	"strconv"
)

// Mode selects how a session obtains its document
type Mode uint8

const (
	ModeNew  Mode = iota // Allocate a fresh id
	ModeLoad             // Load an existing id
)

// Request is the resolved command line of a session
type Request struct {
	Mode Mode
	ID   int64 // Used by ModeLoad only
}

var (
	// ErrUsage marks malformed command lines
	ErrUsage = errors.New("usage")
	// ErrInvalidID marks document ids that can never exist
	ErrInvalidID = errors.New("invalid document id")
)

// ParseRequest interprets positional arguments: "new" or "load <id>"
func ParseRequest(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch args[0] {
	case "new":
		if len(args) != 1 {
			return Request{}, fmt.Errorf("%w: new takes no arguments", ErrUsage)
		}
		return Request{Mode: ModeNew}, nil

	case "load":
		if len(args) != 2 {
			return Request{}, fmt.Errorf("%w: load requires exactly one id", ErrUsage)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %w: %q is not an integer", ErrUsage, ErrInvalidID, args[1])
		}
		if id <= 0 {
			return Request{}, fmt.Errorf("%w: %w: %d is not positive", ErrUsage, ErrInvalidID, id)
		}
		return Request{Mode: ModeLoad, ID: id}, nil

	default:
		return Request{}, fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}
