package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"nightcap/internal/domain"
)

const sessionColumns = `id, user_id, started_at, ended_at, is_active,
	total_standard_drinks, peak_bac, status`

func scanSession(row *sql.Row) (*domain.DrinkSession, error) {
	var s domain.DrinkSession
	err := row.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.EndedAt, &s.IsActive,
		&s.TotalStandardDrinks, &s.PeakBAC, &s.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows *sql.Rows) ([]domain.DrinkSession, error) {
	defer rows.Close()
	var out []domain.DrinkSession
	for rows.Next() {
		var s domain.DrinkSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.EndedAt, &s.IsActive,
			&s.TotalStandardDrinks, &s.PeakBAC, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateSession inserts a new active session. The partial unique index on
// (user_id) WHERE is_active turns a concurrent double-start into
// ErrSessionConflict.
func (d *DB) CreateSession(ctx context.Context, id string, userID int64, startedAt time.Time) (*domain.DrinkSession, error) {
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO drink_sessions (id, user_id, started_at)
		 VALUES ($1, $2, $3) RETURNING `+sessionColumns,
		id, userID, startedAt,
	)
	s, err := scanSession(row)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return nil, domain.ErrSessionConflict
	}
	return s, err
}

// ActiveSession returns the user's active session, or nil when none exists.
func (d *DB) ActiveSession(ctx context.Context, userID int64) (*domain.DrinkSession, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM drink_sessions
		 WHERE user_id = $1 AND is_active`, userID)
	return scanSession(row)
}

// ActiveSessions returns every active session across all users.
func (d *DB) ActiveSessions(ctx context.Context) ([]domain.DrinkSession, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM drink_sessions WHERE is_active ORDER BY started_at`)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// GetSession retrieves a session by ID regardless of owner or state.
func (d *DB) GetSession(ctx context.Context, id string) (*domain.DrinkSession, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM drink_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// UpdateTotals writes the running totals. GREATEST keeps the stored peak when
// a stale recompute carries a lower value.
func (d *DB) UpdateTotals(ctx context.Context, id string, totalStandardDrinks, peakBAC float64) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE drink_sessions SET total_standard_drinks = $2,
			peak_bac = GREATEST(peak_bac, $3) WHERE id = $1`,
		id, totalStandardDrinks, peakBAC,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// EndSession marks a session inactive. Ending twice is a no-op.
func (d *DB) EndSession(ctx context.Context, id string, endedAt time.Time) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE drink_sessions SET is_active = FALSE, ended_at = $2, status = 'completed'
		 WHERE id = $1 AND is_active`,
		id, endedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// RecentSessions returns the user's most recent sessions, newest first.
func (d *DB) RecentSessions(ctx context.Context, userID int64, limit int) ([]domain.DrinkSession, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM drink_sessions
		 WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// AddDrinkEvent appends one logged drink to a session.
func (d *DB) AddDrinkEvent(ctx context.Context, ev domain.DrinkEvent) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO drink_logs (session_id, drink_type, quantity, standard_drink_equivalent, logged_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ev.SessionID, ev.DrinkType, ev.Quantity, ev.StandardDrinkEquivalent, ev.LoggedAt,
	).Scan(&id)
	return id, err
}

// ListDrinkEvents returns a session's drinks in logged order.
func (d *DB) ListDrinkEvents(ctx context.Context, sessionID string) ([]domain.DrinkEvent, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, session_id, drink_type, quantity, standard_drink_equivalent, logged_at
		 FROM drink_logs WHERE session_id = $1 ORDER BY logged_at, id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DrinkEvent
	for rows.Next() {
		var ev domain.DrinkEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.DrinkType, &ev.Quantity,
			&ev.StandardDrinkEquivalent, &ev.LoggedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

var (
	_ domain.DrinkSessionRepository = (*DB)(nil)
	_ domain.DrinkEventRepository   = (*DB)(nil)
)
