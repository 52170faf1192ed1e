// Package storage implements the production get_storage/set_storage
// collaborator (§6) on top of a single-table SQLite database:
// modernc.org/sqlite, no cgo, one file on disk.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a key/value collaborator over one SQLite table. The four keys
// the core reads and writes (profile, library_recent, library,
// schema_version, §6) are plain TEXT primary keys with a BLOB value; there
// is no schema beyond this single table, so Migrate only ever needs to run
// once per fresh database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and ensures
// the kv table exists. path may be ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	// A single *sql.DB serializes writers by default via database/sql's
	// pool, but SQLite itself rejects concurrent writers; cap the pool to
	// one connection so callers never see a "database is locked" error
	// instead of a clean queued write.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the kv table if it does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// GetStorage implements runtime.Environment's GetStorage: (nil, false, nil)
// when key is absent.
func (s *Store) GetStorage(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, true, nil
}

// SetStorage implements runtime.Environment's SetStorage: value == nil
// deletes key.
func (s *Store) SetStorage(ctx context.Context, key string, value []byte) error {
	if value == nil {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("storage: delete %s: %w", key, err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
