package store

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in a map for tests and throwaway sessions
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[int64]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[int64]string),
	}
}

// EnsureSchema is a no-op
func (s *MemoryStore) EnsureSchema(context.Context) error {
	return nil
}

// Save upserts content for id
func (s *MemoryStore) Save(_ context.Context, id int64, content string) error {
	if err := checkID(ErrWriteFailed, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = content
	return nil
}

// Load returns the content for id
func (s *MemoryStore) Load(_ context.Context, id int64) (string, error) {
	if err := checkID(ErrReadFailed, id); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.docs[id]
	if !ok {
		return "", ErrNotFound
	}
	return content, nil
}

// AllocateID returns one past the largest id held
func (s *MemoryStore) AllocateID(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID int64
	for id := range s.docs {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored documents
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
