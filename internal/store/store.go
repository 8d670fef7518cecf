// Package store persists the tutor's event log. Events are append-only:
// one row per tutoring turn and one per LLM request. The in-memory session
// state is authoritative; the log exists for inspection and replay.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed event store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the event database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turn_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		topic TEXT NOT NULL,
		subtopic TEXT NOT NULL,
		tier TEXT NOT NULL,
		answer TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 1,
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turn_events_learner ON turn_events(learner_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DefaultDBPath returns the event database location: MLTUTOR_DB when set,
// otherwise mltutor/events.db under the XDG data directory.
func DefaultDBPath() string {
	if p := os.Getenv("MLTUTOR_DB"); p != "" {
		return p
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "mltutor.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mltutor", "events.db")
}
