// Package store persists save records in a local SQLite database of named
// slots. The record payload is opaque here; its shape belongs to the save
// package.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps the slot database.
type Store struct {
	db *sql.DB
}

// Slot describes one named save.
type Slot struct {
	ID        string
	Name      string
	Turn      int
	CreatedAt time.Time
}

// Open opens (or creates) the slot database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening save database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing save schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		turn INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes a save record into the named slot, replacing any previous
// record under that name.
func (s *Store) Put(name string, payload []byte, turn int) (Slot, error) {
	slot := Slot{
		ID:        uuid.NewString(),
		Name:      name,
		Turn:      turn,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO saves (id, name, turn, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			turn = excluded.turn,
			payload = excluded.payload,
			created_at = excluded.created_at
	`, slot.ID, slot.Name, slot.Turn, string(payload), slot.CreatedAt)
	if err != nil {
		return Slot{}, fmt.Errorf("writing save slot %q: %w", name, err)
	}
	return slot, nil
}

// Get returns the payload stored in the named slot.
func (s *Store) Get(name string) ([]byte, Slot, error) {
	var slot Slot
	var payload string
	err := s.db.QueryRow(`
		SELECT id, name, turn, payload, created_at FROM saves WHERE name = ?
	`, name).Scan(&slot.ID, &slot.Name, &slot.Turn, &payload, &slot.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, Slot{}, fmt.Errorf("save slot %q not found", name)
	}
	if err != nil {
		return nil, Slot{}, fmt.Errorf("reading save slot %q: %w", name, err)
	}
	return []byte(payload), slot, nil
}

// List returns all slots, most recent first.
func (s *Store) List() ([]Slot, error) {
	rows, err := s.db.Query(`
		SELECT id, name, turn, created_at FROM saves ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing save slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(&slot.ID, &slot.Name, &slot.Turn, &slot.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Delete removes the named slot. Deleting a missing slot is not an error.
func (s *Store) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM saves WHERE name = ?`, name)
	return err
}
