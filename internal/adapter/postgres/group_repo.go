package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"nightcap/internal/domain"
)

// CreateGroup inserts an empty friend group.
func (d *DB) CreateGroup(ctx context.Context, creatorID int64, name string) (*domain.FriendGroup, error) {
	var g domain.FriendGroup
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO friend_groups (creator_id, name, created_at)
		 VALUES ($1, $2, $3) RETURNING id, creator_id, name, created_at`,
		creatorID, name, time.Now(),
	).Scan(&g.ID, &g.CreatorID, &g.Name, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroup returns a group with its member ids, or nil when absent.
func (d *DB) GetGroup(ctx context.Context, id int64) (*domain.FriendGroup, error) {
	var g domain.FriendGroup
	err := d.sql.QueryRowContext(ctx,
		`SELECT id, creator_id, name, created_at FROM friend_groups WHERE id = $1`,
		id).Scan(&g.ID, &g.CreatorID, &g.Name, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := d.groupMemberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	g.MemberIDs = members
	return &g, nil
}

// GroupsByCreator lists the groups a user created, members included.
func (d *DB) GroupsByCreator(ctx context.Context, creatorID int64) ([]domain.FriendGroup, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, creator_id, name, created_at FROM friend_groups
		 WHERE creator_id = $1 ORDER BY created_at`,
		creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FriendGroup
	for rows.Next() {
		var g domain.FriendGroup
		if err := rows.Scan(&g.ID, &g.CreatorID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		members, err := d.groupMemberIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].MemberIDs = members
	}
	return out, nil
}

// AddGroupMember adds a user to a group; re-adding is a no-op.
func (d *DB) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO friend_group_members (group_id, user_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		groupID, userID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return domain.ErrGroupNotFound
	}
	return err
}

func (d *DB) groupMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT user_id FROM friend_group_members WHERE group_id = $1 ORDER BY user_id`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UniversityStandings ranks opted-in profiles at one university by completed
// session count.
func (d *DB) UniversityStandings(ctx context.Context, universityName string, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT p.user_id, p.display_name, COUNT(s.id) AS sessions
		 FROM profiles p
		 LEFT JOIN drink_sessions s ON s.user_id = p.user_id AND s.status = 'completed'
		 WHERE p.university_name = $1 AND p.show_on_leaderboard
		 GROUP BY p.user_id, p.display_name
		 ORDER BY sessions DESC, p.user_id
		 LIMIT $2`,
		universityName, limit)
	if err != nil {
		return nil, err
	}
	return collectStandings(rows)
}

// GroupStandings ranks every member of a group by completed session count.
func (d *DB) GroupStandings(ctx context.Context, groupID int64) ([]domain.LeaderboardEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT m.user_id, COALESCE(p.display_name, ''), COUNT(s.id) AS sessions
		 FROM friend_group_members m
		 LEFT JOIN profiles p ON p.user_id = m.user_id
		 LEFT JOIN drink_sessions s ON s.user_id = m.user_id AND s.status = 'completed'
		 WHERE m.group_id = $1
		 GROUP BY m.user_id, p.display_name
		 ORDER BY sessions DESC, m.user_id`,
		groupID)
	if err != nil {
		return nil, err
	}
	return collectStandings(rows)
}

func collectStandings(rows *sql.Rows) ([]domain.LeaderboardEntry, error) {
	defer rows.Close()
	var out []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Sessions); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var (
	_ domain.GroupRepository       = (*DB)(nil)
	_ domain.LeaderboardRepository = (*DB)(nil)
)
