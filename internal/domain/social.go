package domain

import (
	"context"
	"time"
)

// FriendshipStatus is the lifecycle state of a friend request.
type FriendshipStatus string

// Friendship states.
const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship links two users. CanSeeDrinks gates over-limit alerts.
type Friendship struct {
	ID           int64            `json:"id"`
	RequesterID  int64            `json:"requesterId"`
	AddresseeID  int64            `json:"addresseeId"`
	Status       FriendshipStatus `json:"status"`
	CanSeeDrinks bool             `json:"canSeeDrinks"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Other returns the friend's user id from one side of a friendship.
func (f Friendship) Other(userID int64) int64 {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// FriendAlert is an over-limit notification delivered to a friend.
type FriendAlert struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	FriendID  int64     `json:"friendId"`
	SessionID string    `json:"sessionId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NightPrivacyOverride hides (or re-shows) one session from one friend.
type NightPrivacyOverride struct {
	UserID    int64  `json:"userId"`
	SessionID string `json:"sessionId"`
	FriendID  int64  `json:"friendId"`
	CanSee    bool   `json:"canSee"`
}

// FriendGroup is a user-curated circle of friends ranked together on the
// group leaderboard. MemberIDs holds the current members.
type FriendGroup struct {
	ID        int64     `json:"id"`
	CreatorID int64     `json:"creatorId"`
	Name      string    `json:"name"`
	MemberIDs []int64   `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry ranks one user by completed drinking sessions.
type LeaderboardEntry struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	Sessions    int    `json:"sessions"`
}

// FriendshipRepository is the port for friendship persistence.
type FriendshipRepository interface {
	CreateFriendship(ctx context.Context, requesterID, addresseeID int64) (*Friendship, error)
	SetFriendshipStatus(ctx context.Context, id int64, status FriendshipStatus) error
	SetFriendshipVisibility(ctx context.Context, id int64, canSeeDrinks bool) error
	ListFriendships(ctx context.Context, userID int64) ([]Friendship, error)
	// AcceptedVisibleFriendships returns accepted friendships involving userID
	// where canSeeDrinks is set.
	AcceptedVisibleFriendships(ctx context.Context, userID int64) ([]Friendship, error)
}

// FriendAlertRepository is the port for alert persistence.
type FriendAlertRepository interface {
	AddFriendAlert(ctx context.Context, alert FriendAlert) (int64, error)
	ListFriendAlerts(ctx context.Context, friendID int64, limit int) ([]FriendAlert, error)
	MarkAlertRead(ctx context.Context, friendID, alertID int64) error
}

// PrivacyOverrideRepository is the port for per-night privacy overrides.
type PrivacyOverrideRepository interface {
	SetNightPrivacyOverride(ctx context.Context, o NightPrivacyOverride) error
	ListNightPrivacyOverrides(ctx context.Context, userID int64, sessionID string) ([]NightPrivacyOverride, error)
}

// GroupRepository is the port for friend group persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, creatorID int64, name string) (*FriendGroup, error)
	// GetGroup returns the group with its member ids, or nil when absent.
	GetGroup(ctx context.Context, id int64) (*FriendGroup, error)
	GroupsByCreator(ctx context.Context, creatorID int64) ([]FriendGroup, error)
	AddGroupMember(ctx context.Context, groupID, userID int64) error
}

// LeaderboardRepository ranks users by completed session count.
type LeaderboardRepository interface {
	// UniversityStandings ranks opted-in profiles at one university,
	// most sessions first, capped at limit.
	UniversityStandings(ctx context.Context, universityName string, limit int) ([]LeaderboardEntry, error)
	// GroupStandings ranks every member of a group, most sessions first.
	GroupStandings(ctx context.Context, groupID int64) ([]LeaderboardEntry, error)
}
