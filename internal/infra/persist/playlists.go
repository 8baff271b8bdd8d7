// Package persist stores the user's playlists as an opaque blob, round-
// tripped verbatim: the engine never interprets the contents.
package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

// DefaultDBPath is the default location of the playlists database.
const DefaultDBPath = "data/vpod.db"

// PlaylistStore is the SQLite-backed playlist blob store.
type PlaylistStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewPlaylistStore creates a store at the given path.
func NewPlaylistStore(path string) *PlaylistStore {
	if path == "" {
		path = DefaultDBPath
	}
	return &PlaylistStore{path: path}
}

// Open opens the database and initializes the schema.
func (p *PlaylistStore) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", p.path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open playlists database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			blob TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	p.db = db
	log.Info().Str("path", p.path).Msg("Playlists database opened")
	return nil
}

// Close closes the database.
func (p *PlaylistStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Load returns the stored blob, or "[]" if nothing was ever saved.
func (p *PlaylistStore) Load() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return "", fmt.Errorf("database not open")
	}

	var blob string
	err := p.db.QueryRow(`SELECT blob FROM playlists WHERE id = 1`).Scan(&blob)
	if err == sql.ErrNoRows {
		return "[]", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load playlists: %w", err)
	}
	return blob, nil
}

// Save replaces the stored blob.
func (p *PlaylistStore) Save(blob string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return fmt.Errorf("database not open")
	}

	now := time.Now().Format(time.RFC3339)
	_, err := p.db.Exec(`
		INSERT INTO playlists (id, blob, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = ?, updated_at = ?
	`, blob, now, blob, now)
	if err != nil {
		return fmt.Errorf("failed to save playlists: %w", err)
	}
	return nil
}
