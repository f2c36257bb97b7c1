// Package sqlite implements the repository ports on an embedded SQLite
// database. It is the single-binary alternative to the postgres adapter.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQLite connection and implements the repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the database file, applies the pragmas the adapter
// relies on and runs migrations.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows the monitor sweep to read while a request writes.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqlDB.Exec(stmt); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	db := &DB{sql: sqlDB}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			display_name TEXT NOT NULL DEFAULT '',
			biological_sex TEXT NOT NULL DEFAULT 'male',
			weight_lbs REAL NOT NULL DEFAULT 0,
			height_inches INTEGER NOT NULL DEFAULT 0,
			university_name TEXT NOT NULL DEFAULT '',
			personal_drink_limit INTEGER NOT NULL DEFAULT 0,
			show_on_leaderboard BOOLEAN NOT NULL DEFAULT TRUE,
			calibration_count INTEGER NOT NULL DEFAULT 0,
			calculated_low_limit INTEGER NOT NULL DEFAULT 0,
			calculated_med_limit INTEGER NOT NULL DEFAULT 0,
			calculated_high_limit INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS drink_sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			total_standard_drinks REAL NOT NULL DEFAULT 0,
			peak_bac REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active'
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_drink_sessions_one_active
			ON drink_sessions(user_id) WHERE is_active;`,
		`CREATE TABLE IF NOT EXISTS drink_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES drink_sessions(id) ON DELETE CASCADE,
			drink_type TEXT NOT NULL CHECK(drink_type IN ('shot','beer','mixed')),
			quantity REAL NOT NULL DEFAULT 1,
			standard_drink_equivalent REAL NOT NULL,
			logged_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drink_logs_session_logged_at ON drink_logs(session_id, logged_at);`,
		`CREATE TABLE IF NOT EXISTS calibration_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_number INTEGER NOT NULL,
			drinks_consumed INTEGER NOT NULL,
			feeling_rating INTEGER NOT NULL CHECK(feeling_rating BETWEEN 1 AND 5),
			could_handle_more BOOLEAN NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_calibration_sessions_user ON calibration_sessions(user_id, session_number);`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			requester_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			addressee_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			can_see_drinks BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_requester ON friendships(requester_id);`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_addressee ON friendships(addressee_id);`,
		`CREATE TABLE IF NOT EXISTS friend_alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			friend_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friend_alerts_friend_created_at ON friend_alerts(friend_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS night_privacy_overrides (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL,
			friend_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			can_see BOOLEAN NOT NULL,
			PRIMARY KEY(user_id, session_id, friend_id)
		);`,
		`CREATE TABLE IF NOT EXISTS friend_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			creator_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friend_groups_creator ON friend_groups(creator_id);`,
		`CREATE TABLE IF NOT EXISTS friend_group_members (
			group_id INTEGER NOT NULL REFERENCES friend_groups(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY(group_id, user_id)
		);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
