package postgres

import (
	"context"
	"database/sql"
	"time"

	"nightcap/internal/domain"
)

const profileColumns = `user_id, display_name, biological_sex, weight_lbs, height_inches,
	university_name, personal_drink_limit, show_on_leaderboard, calibration_count,
	calculated_low_limit, calculated_med_limit, calculated_high_limit, created_at, updated_at`

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.UserID, &p.DisplayName, &p.BiologicalSex, &p.WeightLbs, &p.HeightInches,
		&p.UniversityName, &p.PersonalDrinkLimit, &p.ShowOnLeaderboard, &p.CalibrationCount,
		&p.Limits.Low, &p.Limits.Med, &p.Limits.High, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile creates an empty profile for a new user.
func (d *DB) CreateProfile(ctx context.Context, userID int64, displayName string) (*domain.Profile, error) {
	now := time.Now()
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO profiles (user_id, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $3) RETURNING `+profileColumns,
		userID, displayName, now,
	)
	return scanProfile(row)
}

// GetProfile retrieves a profile by user ID.
func (d *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

// UpdateProfile applies a partial edit; nil fields keep their stored value.
func (d *DB) UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.Profile, error) {
	var sex *string
	if upd.BiologicalSex != nil {
		s := string(*upd.BiologicalSex)
		sex = &s
	}
	row := d.sql.QueryRowContext(ctx,
		`UPDATE profiles SET
			display_name = COALESCE($2, display_name),
			biological_sex = COALESCE($3, biological_sex),
			weight_lbs = COALESCE($4, weight_lbs),
			height_inches = COALESCE($5, height_inches),
			university_name = COALESCE($6, university_name),
			personal_drink_limit = COALESCE($7, personal_drink_limit),
			show_on_leaderboard = COALESCE($8, show_on_leaderboard),
			updated_at = $9
		 WHERE user_id = $1 RETURNING `+profileColumns,
		userID, upd.DisplayName, sex, upd.WeightLbs, upd.HeightInches,
		upd.UniversityName, upd.PersonalDrinkLimit, upd.ShowOnLeaderboard, time.Now(),
	)
	return scanProfile(row)
}

// SetLimits writes the calculated limit fields.
func (d *DB) SetLimits(ctx context.Context, userID int64, limits domain.LimitThresholds) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE profiles SET calculated_low_limit = $2, calculated_med_limit = $3,
			calculated_high_limit = $4, updated_at = $5 WHERE user_id = $1`,
		userID, limits.Low, limits.Med, limits.High, time.Now(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// SetCalibrationState writes the calibration counter and, when limits is
// non-nil, the adjusted thresholds in the same statement.
func (d *DB) SetCalibrationState(ctx context.Context, userID int64, count int, limits *domain.LimitThresholds) error {
	var (
		res sql.Result
		err error
	)
	if limits == nil {
		res, err = d.sql.ExecContext(ctx,
			`UPDATE profiles SET calibration_count = $2, updated_at = $3 WHERE user_id = $1`,
			userID, count, time.Now(),
		)
	} else {
		res, err = d.sql.ExecContext(ctx,
			`UPDATE profiles SET calibration_count = $2, calculated_low_limit = $3,
				calculated_med_limit = $4, calculated_high_limit = $5, updated_at = $6
			 WHERE user_id = $1`,
			userID, count, limits.Low, limits.Med, limits.High, time.Now(),
		)
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

var _ domain.ProfileRepository = (*DB)(nil)
