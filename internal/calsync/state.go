package calsync

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which sessions have been synced to the calendar so
// unchanged events are not sent again.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/calsync.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "calsync.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS synced_sessions (
		session_id TEXT PRIMARY KEY,
		hash       TEXT NOT NULL,
		synced_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsSynced reports whether a session was already synced with the same content.
func (s *StateDB) IsSynced(sessionID, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM synced_sessions WHERE session_id = ? AND hash = ?`,
		sessionID, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSynced records that a session's event was exported.
func (s *StateDB) MarkSynced(sessionID, hash string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO synced_sessions (session_id, hash) VALUES (?, ?)`,
		sessionID, hash,
	)
	return err
}

// Pending filters events down to those not yet synced with their current
// content. Adapted sessions get new hashes and show up again.
func (s *StateDB) Pending(events []Event) ([]Event, error) {
	var out []Event
	for i := range events {
		synced, err := s.IsSynced(events[i].SessionID, events[i].Hash())
		if err != nil {
			return nil, err
		}
		if !synced {
			out = append(out, events[i])
		}
	}
	return out, nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
