package store

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

const (
	sqlCreateTable = `CREATE TABLE IF NOT EXISTS documents (
	id      INTEGER PRIMARY KEY,
	content TEXT NOT NULL
)`
	sqlUpsert = `INSERT INTO documents (id, content) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET content = excluded.content`
	sqlSelect   = `SELECT content FROM documents WHERE id = ?`
	sqlNextID   = `SELECT COALESCE(MAX(id), 0) + 1 FROM documents`
	sqlDriverID = "sqlite"
)

// SQLStore keeps documents in a SQLite database
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (creating if needed) the SQLite database at path
// The schema is not touched until EnsureSchema
func OpenSQL(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open(sqlDriverID, path)
	if err != nil {
		return nil, wrap(ErrStoreUnavailable, err)
	}
	// Single session, single writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrap(ErrStoreUnavailable, err)
	}
	return &SQLStore{db: db}, nil
}

// EnsureSchema creates the documents table if absent
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqlCreateTable); err != nil {
		return wrap(ErrStoreUnavailable, err)
	}
	return nil
}

// Save upserts content for id in one statement
func (s *SQLStore) Save(ctx context.Context, id int64, content string) error {
	if err := checkID(ErrWriteFailed, id); err != nil {
		return err
	}

	stmt, err := s.db.PrepareContext(ctx, sqlUpsert)
	if err != nil {
		return wrap(ErrWriteFailed, err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, id, content); err != nil {
		return wrap(ErrWriteFailed, err)
	}
	return nil
}

// Load returns the content for id
func (s *SQLStore) Load(ctx context.Context, id int64) (string, error) {
	if err := checkID(ErrReadFailed, id); err != nil {
		return "", err
	}

	var content string
	err := s.db.QueryRowContext(ctx, sqlSelect, id).Scan(&content)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrNotFound
	case err != nil:
		return "", wrap(ErrReadFailed, err)
	}
	return content, nil
}

// AllocateID returns one past the largest stored id
func (s *SQLStore) AllocateID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, sqlNextID).Scan(&id); err != nil {
		return 0, wrap(ErrReadFailed, err)
	}
	return id, nil
}

// Close closes the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}
