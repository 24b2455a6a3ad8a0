// Package bindstore persists per-mode opaque blobs in a local SQLite file.
// The schema is a plain key/value table so callers own the blob format.
package bindstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed key/value store keyed by mode name.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open binding store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS bindings (
		mode TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init binding store: %w", err)
	}
	return &Store{db: db}, nil
}

// Save writes the blob for mode, replacing any previous value.
func (s *Store) Save(mode string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO bindings (mode, data) VALUES (?, ?)
		 ON CONFLICT(mode) DO UPDATE SET data = excluded.data`,
		mode, data)
	if err != nil {
		return fmt.Errorf("save binding %s: %w", mode, err)
	}
	return nil
}

// Load reads the blob for mode. ok is false when no row exists.
func (s *Store) Load(mode string) (data []byte, ok bool, err error) {
	err = s.db.QueryRow(`SELECT data FROM bindings WHERE mode = ?`, mode).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load binding %s: %w", mode, err)
	}
	return data, true, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
