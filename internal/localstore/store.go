// Package localstore persists session preferences and fetched records
// between CLI runs, backed by SQLite in the data directory. It plays
// the role browser local storage plays for the web editor: a
// convenience copy, never the source of truth.
package localstore

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

//go:embed schema.sql
var schemaSQL string

// Preference keys the CLI uses.
const (
	PrefWorldID = "world_id"
	PrefTheme   = "theme"
)

// Store is the on-disk session store. Open creates it, Close releases
// it; Close is idempotent.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// Open creates dataDir if needed and opens (or creates) the store
// database inside it.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "worldtool.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing session store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database. Multiple calls succeed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// GetPref returns a preference value, or "" when unset.
func (s *Store) GetPref(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading pref %s: %w", key, err)
	}
	return value, nil
}

// SetPref stores a preference value, replacing any previous one.
func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing pref %s: %w", key, err)
	}
	return nil
}

// PutRecord stores a fetched record, replacing any previous copy.
func (s *Store) PutRecord(recordType string, r record.Record) error {
	if r.ID() == "" {
		return fmt.Errorf("storing %s record: %w", recordType, record.ErrInvalidID)
	}
	body, err := json.Marshal(map[string]any(r))
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", recordType, r.ID(), err)
	}
	_, err = s.db.Exec(
		`INSERT INTO records (record_type, id, body, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(record_type, id) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		recordType, r.ID(), string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing %s/%s: %w", recordType, r.ID(), err)
	}
	return nil
}

// GetRecord retrieves a stored record. Returns record.ErrNotFound when
// no copy exists.
func (s *Store) GetRecord(recordType, id string) (record.Record, error) {
	var body string
	err := s.db.QueryRow(
		`SELECT body FROM records WHERE record_type = ? AND id = ?`,
		recordType, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("local copy of %s/%s: %w", recordType, id, record.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", recordType, id, err)
	}

	var r record.Record
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", recordType, id, err)
	}
	return r, nil
}

// ListRecords returns all stored records of one type.
func (s *Store) ListRecords(recordType string) ([]record.Record, error) {
	rows, err := s.db.Query(
		`SELECT body FROM records WHERE record_type = ? ORDER BY id`, recordType)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", recordType, err)
	}
	defer func() { _ = rows.Close() }()

	var out []record.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("listing %s: %w", recordType, err)
		}
		var r record.Record
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("decoding stored %s: %w", recordType, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRecord removes a stored record. Deleting an absent record is
// not an error; the desired state is already true.
func (s *Store) DeleteRecord(recordType, id string) error {
	_, err := s.db.Exec(
		`DELETE FROM records WHERE record_type = ? AND id = ?`, recordType, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", recordType, id, err)
	}
	return nil
}
