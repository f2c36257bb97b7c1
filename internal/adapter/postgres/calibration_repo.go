package postgres

import (
	"context"
	"time"

	"nightcap/internal/domain"
)

// AddCalibrationRecord stores one post-session self-report.
func (d *DB) AddCalibrationRecord(ctx context.Context, rec domain.CalibrationRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO calibration_sessions (user_id, session_number, drinks_consumed,
			feeling_rating, could_handle_more, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rec.UserID, rec.SessionNumber, rec.DrinksConsumed,
		rec.FeelingRating, rec.CouldHandleMore, rec.CreatedAt,
	).Scan(&id)
	return id, err
}

// ListCalibrationRecords returns a user's self-reports in session order.
func (d *DB) ListCalibrationRecords(ctx context.Context, userID int64) ([]domain.CalibrationRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, user_id, session_number, drinks_consumed, feeling_rating,
			could_handle_more, created_at
		 FROM calibration_sessions WHERE user_id = $1 ORDER BY session_number, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CalibrationRecord
	for rows.Next() {
		var rec domain.CalibrationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SessionNumber, &rec.DrinksConsumed,
			&rec.FeelingRating, &rec.CouldHandleMore, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ domain.CalibrationRepository = (*DB)(nil)
