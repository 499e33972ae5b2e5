// Package store implements Luna's persistent memory on SQLite.
//
// All of Luna's durable state lives in one database: personality traits,
// reflections, learned preferences, conversation patterns, the user model,
// activity snapshots, interactions and the journal. Components share the
// store; the connection pool serializes concurrent access, so no caller
// holds a connection across a generation call.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seedTraits(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed traits: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS traits (
		name TEXT PRIMARY KEY,
		weight REAL DEFAULT 0.5,
		updated_at TIMESTAMP,
		note TEXT
	);

	CREATE TABLE IF NOT EXISTS reflections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP,
		context TEXT,
		content TEXT,
		deltas_json TEXT,
		mood TEXT
	);

	CREATE TABLE IF NOT EXISTS preferences (
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		confidence REAL DEFAULT 0.5,
		last_observed TIMESTAMP,
		count INTEGER DEFAULT 1,
		UNIQUE(type, value)
	);

	CREATE TABLE IF NOT EXISTS patterns (
		description TEXT PRIMARY KEY,
		effectiveness REAL DEFAULT 0.5,
		last_used TIMESTAMP,
		count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS user_model (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		aspect TEXT,
		understanding TEXT,
		confidence REAL DEFAULT 0.5,
		updated_at TIMESTAMP,
		note TEXT
	);

	CREATE TABLE IF NOT EXISTS activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP,
		processes_csv TEXT,
		window_title TEXT
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP,
		message TEXT,
		response TEXT
	);

	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP,
		entry TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reflections_timestamp ON reflections(timestamp);
	CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity(timestamp);
	CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_user_model_aspect ON user_model(aspect);
	`

	_, err := s.db.Exec(schema)
	return err
}

// defaultTraits is the seed personality. Applied only when the traits table
// is empty, so evolved weights survive restarts.
var defaultTraits = []struct {
	name   string
	weight float64
}{
	{"sarcasm", 0.7},
	{"caring", 0.4},
	{"chaos", 0.8},
	{"curiosity", 0.6},
	{"mischief", 0.9},
	{"helpfulness", 0.5},
	{"moodiness", 0.8},
}

// seedTraits inserts the default trait set if the table is empty.
func (s *Store) seedTraits(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM traits`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	for _, t := range defaultTraits {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO traits (name, weight, updated_at, note) VALUES (?, ?, ?, ?)`,
			t.name, t.weight, now, "Initial setup",
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// clamp01 bounds a weight into [0,1].
func clamp01(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
