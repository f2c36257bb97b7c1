package app

import (
	"context"
	"fmt"

	"nightcap/internal/domain"
)

// AlertService fans out over-limit notifications to a user's friends.
type AlertService struct {
	friendships domain.FriendshipRepository
	alerts      domain.FriendAlertRepository
	overrides   domain.PrivacyOverrideRepository
}

// NewAlertService creates an AlertService backed by the given repositories.
func NewAlertService(friendships domain.FriendshipRepository, alerts domain.FriendAlertRepository, overrides domain.PrivacyOverrideRepository) *AlertService {
	return &AlertService{friendships: friendships, alerts: alerts, overrides: overrides}
}

// SendFriendAlerts inserts one alert row per friend who is allowed to see the
// user's drinking: accepted friendships with drink visibility on, minus any
// per-night privacy overrides for this session.
func (s *AlertService) SendFriendAlerts(ctx context.Context, userID int64, sessionID string, bac float64, limitLevel string) error {
	friendships, err := s.friendships.AcceptedVisibleFriendships(ctx, userID)
	if err != nil {
		return err
	}

	overrides, err := s.overrides.ListNightPrivacyOverrides(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	hidden := make(map[int64]bool, len(overrides))
	for _, o := range overrides {
		hidden[o.FriendID] = !o.CanSee
	}

	message := fmt.Sprintf("Your friend has exceeded their %s limit (BAC: %.3f). Check in on them!", limitLevel, bac)

	for _, f := range friendships {
		friendID := f.Other(userID)
		if hidden[friendID] {
			continue
		}
		if _, err := s.alerts.AddFriendAlert(ctx, domain.FriendAlert{
			UserID:    userID,
			FriendID:  friendID,
			SessionID: sessionID,
			Message:   message,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Alerts returns the most recent alerts delivered to the user.
func (s *AlertService) Alerts(ctx context.Context, userID int64, limit int) ([]domain.FriendAlert, error) {
	return s.alerts.ListFriendAlerts(ctx, userID, limit)
}

// MarkRead marks one of the user's alerts as read.
func (s *AlertService) MarkRead(ctx context.Context, userID, alertID int64) error {
	return s.alerts.MarkAlertRead(ctx, userID, alertID)
}
