package sqlite

import (
	"context"
	"database/sql"
	"time"

	"nightcap/internal/domain"
)

const friendshipColumns = `id, requester_id, addressee_id, status, can_see_drinks, created_at`

func collectFriendships(rows *sql.Rows) ([]domain.Friendship, error) {
	defer rows.Close()
	var out []domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status,
			&f.CanSeeDrinks, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFriendship records a new pending friend request.
func (d *DB) CreateFriendship(ctx context.Context, requesterID, addresseeID int64) (*domain.Friendship, error) {
	now := time.Now()
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO friendships (requester_id, addressee_id, status, can_see_drinks, created_at)
		 VALUES (?, ?, 'pending', TRUE, ?)`,
		requesterID, addresseeID, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Friendship{
		ID:           id,
		RequesterID:  requesterID,
		AddresseeID:  addresseeID,
		Status:       domain.FriendshipPending,
		CanSeeDrinks: true,
		CreatedAt:    now,
	}, nil
}

// SetFriendshipStatus moves a friendship through its lifecycle.
func (d *DB) SetFriendshipStatus(ctx context.Context, id int64, status domain.FriendshipStatus) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE friendships SET status = ? WHERE id = ?`, status, id)
	return err
}

// SetFriendshipVisibility toggles the standing drink-visibility flag.
func (d *DB) SetFriendshipVisibility(ctx context.Context, id int64, canSeeDrinks bool) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE friendships SET can_see_drinks = ? WHERE id = ?`, canSeeDrinks, id)
	return err
}

// ListFriendships returns every friendship involving the user, any status.
func (d *DB) ListFriendships(ctx context.Context, userID int64) ([]domain.Friendship, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE requester_id = ? OR addressee_id = ? ORDER BY created_at`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	return collectFriendships(rows)
}

// AcceptedVisibleFriendships returns accepted friendships involving the user
// where drink visibility is on.
func (d *DB) AcceptedVisibleFriendships(ctx context.Context, userID int64) ([]domain.Friendship, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE (requester_id = ? OR addressee_id = ?)
		   AND status = 'accepted' AND can_see_drinks
		 ORDER BY created_at`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	return collectFriendships(rows)
}

// AddFriendAlert stores an over-limit notification.
func (d *DB) AddFriendAlert(ctx context.Context, alert domain.FriendAlert) (int64, error) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO friend_alerts (user_id, friend_id, session_id, message, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		alert.UserID, alert.FriendID, alert.SessionID, alert.Message, alert.Read, alert.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListFriendAlerts returns the newest alerts addressed to a friend.
func (d *DB) ListFriendAlerts(ctx context.Context, friendID int64, limit int) ([]domain.FriendAlert, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, user_id, friend_id, session_id, message, is_read, created_at
		 FROM friend_alerts WHERE friend_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		friendID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FriendAlert
	for rows.Next() {
		var a domain.FriendAlert
		if err := rows.Scan(&a.ID, &a.UserID, &a.FriendID, &a.SessionID,
			&a.Message, &a.Read, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkAlertRead marks one alert read, scoped to its recipient.
func (d *DB) MarkAlertRead(ctx context.Context, friendID, alertID int64) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE friend_alerts SET is_read = TRUE WHERE id = ? AND friend_id = ?`,
		alertID, friendID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetNightPrivacyOverride upserts a per-session visibility override.
func (d *DB) SetNightPrivacyOverride(ctx context.Context, o domain.NightPrivacyOverride) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO night_privacy_overrides (user_id, session_id, friend_id, can_see)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, session_id, friend_id) DO UPDATE SET can_see = excluded.can_see`,
		o.UserID, o.SessionID, o.FriendID, o.CanSee)
	return err
}

// ListNightPrivacyOverrides returns a user's overrides for one session.
func (d *DB) ListNightPrivacyOverrides(ctx context.Context, userID int64, sessionID string) ([]domain.NightPrivacyOverride, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT user_id, session_id, friend_id, can_see
		 FROM night_privacy_overrides WHERE user_id = ? AND session_id = ?`,
		userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NightPrivacyOverride
	for rows.Next() {
		var o domain.NightPrivacyOverride
		if err := rows.Scan(&o.UserID, &o.SessionID, &o.FriendID, &o.CanSee); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

var (
	_ domain.FriendshipRepository      = (*DB)(nil)
	_ domain.FriendAlertRepository     = (*DB)(nil)
	_ domain.PrivacyOverrideRepository = (*DB)(nil)
)
