// Package store persists serialized grids keyed by positive integer document ids.
//
// All backends share one protocol: EnsureSchema is idempotent, Save is a
// single-statement upsert, Load reports ErrNotFound for ids never saved, and
// AllocateID returns one past the largest stored id. Nothing is retried, and
// AllocateID is not safe against concurrent writers.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrWriteFailed      = errors.New("write failed")
	ErrReadFailed       = errors.New("read failed")
	ErrNotFound         = errors.New("document not found")
)

// DocumentStore maps document ids to serialized grid content
type DocumentStore interface {
	// EnsureSchema creates the documents table or collection if absent
	EnsureSchema(ctx context.Context) error

	// Save inserts or overwrites the content for id
	Save(ctx context.Context, id int64, content string) error

	// Load returns the content for id or ErrNotFound
	Load(ctx context.Context, id int64) (string, error)

	// AllocateID returns max(id)+1, or 1 on an empty store
	AllocateID(ctx context.Context) (int64, error)

	// Close releases the backend connection
	Close() error
}

// wrap tags a backend error with its kind
func wrap(kind error, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

// checkID rejects ids that can never be stored
func checkID(kind error, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid document id %d", kind, id)
	}
	return nil
}
