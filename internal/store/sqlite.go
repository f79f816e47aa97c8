// Package store implements the relational store for users, trips and
// BorderBuddy records on SQLite.
//
// Lookup methods return (nil, nil) when no row matches; errors are
// reserved for store failures. Chat messages live in the append-only
// log, not here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrDuplicateEmail is returned by CreateUser for an already
// registered email.
var ErrDuplicateEmail = errors.New("email already registered")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs the schema
// migration. Use "file::memory:?cache=shared" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			full_name     TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trips (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title               TEXT NOT NULL DEFAULT '',
			purpose             TEXT NOT NULL DEFAULT '',
			destination_country TEXT NOT NULL DEFAULT '',
			start_date          TEXT NOT NULL DEFAULT '',
			end_date            TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL DEFAULT 'Planning',
			created_at          TEXT NOT NULL,
			updated_at          TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_trips_user ON trips(user_id);

		CREATE TABLE IF NOT EXISTS border_buddies (
			id         TEXT PRIMARY KEY,
			trip_id    TEXT NOT NULL UNIQUE REFERENCES trips(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS travel_contexts (
			buddy_id    TEXT PRIMARY KEY REFERENCES border_buddies(id) ON DELETE CASCADE,
			interests   TEXT NOT NULL DEFAULT '[]',
			regions     TEXT NOT NULL DEFAULT '[]',
			budget      TEXT,
			style       TEXT,
			constraints TEXT NOT NULL DEFAULT '[]',
			updated_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS place_sets (
			buddy_id     TEXT PRIMARY KEY REFERENCES border_buddies(id) ON DELETE CASCADE,
			items        TEXT NOT NULL,
			generated_at TEXT NOT NULL
		);
	`)
	return err
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
