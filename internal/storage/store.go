// Package storage persists the identification cache and analysis run
// history in a local sqlite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord is one persisted analysis run.
type RunRecord struct {
	ID        int64
	ImageHash string
	Result    json.RawMessage
	CreatedAt time.Time
}

// Store defines the interface for pipeline persistence.
type Store interface {
	// GetIdentificationCache returns the cached object names for an image
	// hash, or nil, nil on a cache miss.
	GetIdentificationCache(hash string) ([]string, error)
	SetIdentificationCache(hash string, objects []string) error

	// SaveRun appends an analysis run to the history.
	SaveRun(imageHash string, result json.RawMessage) error
	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(limit int) ([]RunRecord, error)

	Close() error
}

// SQLiteStore implements Store using sqlite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new sqlite-backed store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	cacheQuery := `
	CREATE TABLE IF NOT EXISTS identification_cache (
		image_hash TEXT PRIMARY KEY,
		objects TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(cacheQuery); err != nil {
		return fmt.Errorf("failed to create identification_cache table: %w", err)
	}

	runsQuery := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_hash TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(runsQuery); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	return nil
}

// GetIdentificationCache retrieves cached object names by image hash.
// Returns nil, nil on a cache miss.
func (s *SQLiteStore) GetIdentificationCache(hash string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objectsJSON string
	err := s.db.QueryRow(
		"SELECT objects FROM identification_cache WHERE image_hash = ?",
		hash,
	).Scan(&objectsJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query identification cache: %w", err)
	}

	var objects []string
	if err := json.Unmarshal([]byte(objectsJSON), &objects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached objects: %w", err)
	}
	if objects == nil {
		objects = []string{}
	}
	return objects, nil
}

// SetIdentificationCache stores object names for an image hash.
func (s *SQLiteStore) SetIdentificationCache(hash string, objects []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if objects == nil {
		objects = []string{}
	}
	objectsJSON, err := json.Marshal(objects)
	if err != nil {
		return fmt.Errorf("failed to marshal objects: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO identification_cache (image_hash, objects)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			objects = excluded.objects,
			created_at = CURRENT_TIMESTAMP
	`, hash, string(objectsJSON))
	if err != nil {
		return fmt.Errorf("failed to save identification cache: %w", err)
	}
	return nil
}

// SaveRun appends an analysis run to the history.
func (s *SQLiteStore) SaveRun(imageHash string, result json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO runs (image_hash, result) VALUES (?, ?)",
		imageHash, string(result),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, image_hash, result, created_at FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var result string
		if err := rows.Scan(&r.ID, &r.ImageHash, &result, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.Result = json.RawMessage(result)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
