package store

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// documentsDTO is the on-disk layout of a FileStore
type documentsDTO struct {
	Documents []documentDTO `toml:"documents"`
}

type documentDTO struct {
	ID      int64  `toml:"id"`
	Content string `toml:"content"`
}

// FileStore keeps every document in a single TOML file
// Each save rewrites the file through a temp file and rename
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// EnsureSchema creates the parent directory and an empty document file if absent
func (s *FileStore) EnsureSchema(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return wrap(ErrStoreUnavailable, err)
	}

	if _, err := os.Stat(s.path); err == nil {
		// Existing file must at least parse
		if _, err := s.read(); err != nil {
			return wrap(ErrStoreUnavailable, err)
		}
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return wrap(ErrStoreUnavailable, err)
	}

	if err := s.write(documentsDTO{}); err != nil {
		return wrap(ErrStoreUnavailable, err)
	}
	return nil
}

// Save upserts content for id
func (s *FileStore) Save(_ context.Context, id int64, content string) error {
	if err := checkID(ErrWriteFailed, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dto, err := s.read()
	if err != nil {
		return wrap(ErrWriteFailed, err)
	}

	found := false
	for i := range dto.Documents {
		if dto.Documents[i].ID == id {
			dto.Documents[i].Content = content
			found = true
			break
		}
	}
	if !found {
		dto.Documents = append(dto.Documents, documentDTO{ID: id, Content: content})
	}

	if err := s.write(dto); err != nil {
		return wrap(ErrWriteFailed, err)
	}
	return nil
}

// Load returns the content for id
func (s *FileStore) Load(_ context.Context, id int64) (string, error) {
	if err := checkID(ErrReadFailed, id); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dto, err := s.read()
	if err != nil {
		return "", wrap(ErrReadFailed, err)
	}
	for _, d := range dto.Documents {
		if d.ID == id {
			return d.Content, nil
		}
	}
	return "", ErrNotFound
}

// AllocateID returns one past the largest stored id
func (s *FileStore) AllocateID(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dto, err := s.read()
	if err != nil {
		return 0, wrap(ErrReadFailed, err)
	}

	var maxID int64
	for _, d := range dto.Documents {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	return maxID + 1, nil
}

// Close is a no-op; the file is not held open between calls
func (s *FileStore) Close() error {
	return nil
}

// read decodes the whole file; a missing file reads as empty
func (s *FileStore) read() (documentsDTO, error) {
	var dto documentsDTO

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dto, nil
		}
		return dto, err
	}

	if _, err := toml.Decode(string(data), &dto); err != nil {
		return dto, err
	}
	return dto, nil
}

// write replaces the file contents atomically
func (s *FileStore) write(dto documentsDTO) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(dto); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
