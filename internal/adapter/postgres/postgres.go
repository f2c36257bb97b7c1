// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			display_name TEXT NOT NULL DEFAULT '',
			biological_sex TEXT NOT NULL DEFAULT '',
			weight_lbs DOUBLE PRECISION NOT NULL DEFAULT 0,
			height_inches INTEGER NOT NULL DEFAULT 0,
			university_name TEXT NOT NULL DEFAULT '',
			personal_drink_limit INTEGER NOT NULL DEFAULT 0,
			show_on_leaderboard BOOLEAN NOT NULL DEFAULT TRUE,
			calibration_count INTEGER NOT NULL DEFAULT 0,
			calculated_low_limit INTEGER NOT NULL DEFAULT 0,
			calculated_med_limit INTEGER NOT NULL DEFAULT 0,
			calculated_high_limit INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS drink_sessions (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			total_standard_drinks DOUBLE PRECISION NOT NULL DEFAULT 0,
			peak_bac DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active'
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_drink_sessions_one_active
			ON drink_sessions(user_id) WHERE is_active;`,
		`CREATE TABLE IF NOT EXISTS drink_logs (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES drink_sessions(id) ON DELETE CASCADE,
			drink_type TEXT NOT NULL CHECK(drink_type IN ('shot','beer','mixed')),
			quantity DOUBLE PRECISION NOT NULL DEFAULT 1,
			standard_drink_equivalent DOUBLE PRECISION NOT NULL,
			logged_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drink_logs_session_logged_at ON drink_logs(session_id, logged_at);`,
		`CREATE TABLE IF NOT EXISTS calibration_sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_number INTEGER NOT NULL,
			drinks_consumed INTEGER NOT NULL,
			feeling_rating INTEGER NOT NULL CHECK(feeling_rating BETWEEN 1 AND 5),
			could_handle_more BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_calibration_sessions_user ON calibration_sessions(user_id, session_number);`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id BIGSERIAL PRIMARY KEY,
			requester_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			addressee_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			can_see_drinks BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_requester ON friendships(requester_id);`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_addressee ON friendships(addressee_id);`,
		`CREATE TABLE IF NOT EXISTS friend_alerts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friend_alerts_friend_created_at ON friend_alerts(friend_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS night_privacy_overrides (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL,
			friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			can_see BOOLEAN NOT NULL,
			PRIMARY KEY(user_id, session_id, friend_id)
		);`,
		`CREATE TABLE IF NOT EXISTS friend_groups (
			id BIGSERIAL PRIMARY KEY,
			creator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friend_groups_creator ON friend_groups(creator_id);`,
		`CREATE TABLE IF NOT EXISTS friend_group_members (
			group_id BIGINT NOT NULL REFERENCES friend_groups(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
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
