package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

const (
	// DateLayout formats calendar dates (spending dates, health days).
	DateLayout = "2006-01-02"
	// Fixed width so that lexical order matches chronological order.
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path, or ":memory:".
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		id                        TEXT PRIMARY KEY,
		user_id                   TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		anime_tracker_enabled     INTEGER NOT NULL DEFAULT 1,
		daily_inspiration_enabled INTEGER NOT NULL DEFAULT 1,
		spending_tracker_enabled  INTEGER NOT NULL DEFAULT 1,
		todo_list_enabled         INTEGER NOT NULL DEFAULT 1,
		health_tracker_enabled    INTEGER NOT NULL DEFAULT 1,
		mini_games_enabled        INTEGER NOT NULL DEFAULT 1,
		layout                    TEXT NOT NULL DEFAULT '[]',
		pomodoro_minutes          INTEGER NOT NULL DEFAULT 25,
		created_at                TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at                TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS anime_entries (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'plan_to_watch',
		episodes_watched INTEGER NOT NULL DEFAULT 0 CHECK (episodes_watched >= 0),
		total_episodes   INTEGER NOT NULL DEFAULT 12,
		rating           REAL,
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS todo_items (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		completed   INTEGER NOT NULL DEFAULT 0,
		priority    TEXT NOT NULL DEFAULT 'medium',
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS spending_entries (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount_cents INTEGER NOT NULL,
		category     TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		date         TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS spending_goals (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category            TEXT NOT NULL,
		monthly_limit_cents INTEGER NOT NULL,
		created_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(user_id, category)
	);

	CREATE TABLE IF NOT EXISTS health_metrics (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date          TEXT NOT NULL,
		steps         INTEGER,
		sleep_hours   REAL,
		water_glasses REAL,
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(user_id, date)
	);

	CREATE TABLE IF NOT EXISTS pomodoro_sessions (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		duration     INTEGER NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_anime_user    ON anime_entries(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_todo_user     ON todo_items(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_spending_user ON spending_entries(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_pomodoro_user ON pomodoro_sessions(user_id, completed_at);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func nowUTC() string {
	return time.Now().UTC().Format(tsLayout)
}

// Today returns the current UTC date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

func parseTime(v string) time.Time {
	if t, err := time.Parse(tsLayout, v); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
