// Package sqlite provides a SQLite-backed implementation of the catalogue ports.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/acoustic-print/internal/logging"
)

const releaseDateLayout = "2006-01-02"

// Adapter implements the catalogue repository and feature store for SQLite
type Adapter struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// every pooled connection to ":memory:" would otherwise see its own database
	if storagePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db, log: logging.Component("sqlite")}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS artists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		favorites INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist_id INTEGER REFERENCES artists(id),
		release_date TEXT,
		num_tracks INTEGER NOT NULL DEFAULT 0,
		favorites INTEGER NOT NULL DEFAULT 0,
		listens INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist_id INTEGER REFERENCES artists(id),
		album_id INTEGER REFERENCES albums(id) ON DELETE SET NULL,
		duration INTEGER NOT NULL DEFAULT 0,
		favorites INTEGER NOT NULL DEFAULT 0,
		listens INTEGER NOT NULL DEFAULT 0,
		explicit INTEGER NOT NULL DEFAULT -1 CHECK (explicit IN (-1, 0, 1)),
		valence REAL,
		energy REAL,
		danceability REAL,
		acousticness REAL,
		instrumentalness REAL,
		speechiness REAL,
		liveness REAL,
		tempo REAL,
		external_id TEXT,
		preview_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS genres (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS track_genres (
		track_id INTEGER NOT NULL,
		genre_id INTEGER NOT NULL,
		PRIMARY KEY (track_id, genre_id),
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE,
		FOREIGN KEY(genre_id) REFERENCES genres(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id);
	CREATE INDEX IF NOT EXISTS idx_track_genres_genre ON track_genres(genre_id);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// columns added after the first schema revision
	for _, stmt := range []string{
		"ALTER TABLE tracks ADD COLUMN external_id TEXT",
		"ALTER TABLE tracks ADD COLUMN preview_url TEXT",
	} {
		if _, err := a.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}

func parseReleaseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(releaseDateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func formatReleaseDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(releaseDateLayout)
}
