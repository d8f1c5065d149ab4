// Package store keeps the observation history: every value measured for a
// tracked app is appended here, alongside whether the check succeeded and
// whether the measurement came from a refresh, a snapshot, or a watch
// trigger. The history is auxiliary — the tab-delimited data file remains
// the registry's only source of truth — so a missing or broken history
// database never blocks the core commands.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// FileName is the history database file name inside the data directory.
const FileName = "history.db"

// Store provides SQLite operations for the observation history.
type Store struct {
	db *sql.DB
}

// New creates a Store backed by the database at dbPath.
// Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}
