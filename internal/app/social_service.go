package app

import (
	"context"
	"errors"

	"nightcap/internal/domain"
)

// ErrSelfFriendship indicates a friend request addressed to oneself.
var ErrSelfFriendship = errors.New("cannot friend yourself")

// ErrEmptyGroupName indicates a group created without a name.
var ErrEmptyGroupName = errors.New("group name must not be empty")

// ErrNotGroupOwner indicates a member change on someone else's group.
var ErrNotGroupOwner = errors.New("not your group")

// SocialService manages friendships, friend groups and drink-visibility
// settings.
type SocialService struct {
	friendships domain.FriendshipRepository
	overrides   domain.PrivacyOverrideRepository
	groups      domain.GroupRepository
}

// NewSocialService creates a SocialService backed by the given repositories.
func NewSocialService(friendships domain.FriendshipRepository, overrides domain.PrivacyOverrideRepository, groups domain.GroupRepository) *SocialService {
	return &SocialService{friendships: friendships, overrides: overrides, groups: groups}
}

// Request creates a pending friendship from requester to addressee.
func (s *SocialService) Request(ctx context.Context, requesterID, addresseeID int64) (*domain.Friendship, error) {
	if requesterID == addresseeID {
		return nil, ErrSelfFriendship
	}
	return s.friendships.CreateFriendship(ctx, requesterID, addresseeID)
}

// Respond accepts or declines a pending friend request.
func (s *SocialService) Respond(ctx context.Context, friendshipID int64, accept bool) error {
	status := domain.FriendshipDeclined
	if accept {
		status = domain.FriendshipAccepted
	}
	return s.friendships.SetFriendshipStatus(ctx, friendshipID, status)
}

// SetVisibility toggles whether a friendship exposes drink activity.
func (s *SocialService) SetVisibility(ctx context.Context, friendshipID int64, canSeeDrinks bool) error {
	return s.friendships.SetFriendshipVisibility(ctx, friendshipID, canSeeDrinks)
}

// Friends lists all friendships involving the user.
func (s *SocialService) Friends(ctx context.Context, userID int64) ([]domain.Friendship, error) {
	return s.friendships.ListFriendships(ctx, userID)
}

// SetNightOverride hides or re-shows a single session from a single friend.
func (s *SocialService) SetNightOverride(ctx context.Context, userID int64, sessionID string, friendID int64, canSee bool) error {
	return s.overrides.SetNightPrivacyOverride(ctx, domain.NightPrivacyOverride{
		UserID:    userID,
		SessionID: sessionID,
		FriendID:  friendID,
		CanSee:    canSee,
	})
}

// CreateGroup opens a new friend group owned by the caller.
func (s *SocialService) CreateGroup(ctx context.Context, creatorID int64, name string) (*domain.FriendGroup, error) {
	if name == "" {
		return nil, ErrEmptyGroupName
	}
	return s.groups.CreateGroup(ctx, creatorID, name)
}

// Groups lists the groups the caller created, members included.
func (s *SocialService) Groups(ctx context.Context, creatorID int64) ([]domain.FriendGroup, error) {
	return s.groups.GroupsByCreator(ctx, creatorID)
}

// AddGroupMember adds a user to a group. Only the group's creator may do so.
func (s *SocialService) AddGroupMember(ctx context.Context, callerID, groupID, memberID int64) error {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}
	if group.CreatorID != callerID {
		return ErrNotGroupOwner
	}
	return s.groups.AddGroupMember(ctx, groupID, memberID)
}
