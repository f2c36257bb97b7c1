package app

import (
	"context"

	"nightcap/internal/domain"
)

// universityLeaderboardLimit caps the university ranking size.
const universityLeaderboardLimit = 50

// LeaderboardService ranks users by how many sessions they have completed.
// Only profiles that opted in through ShowOnLeaderboard appear in university
// standings; group standings always show every member.
type LeaderboardService struct {
	standings domain.LeaderboardRepository
	groups    domain.GroupRepository
}

// NewLeaderboardService creates a LeaderboardService over the given
// repositories.
func NewLeaderboardService(standings domain.LeaderboardRepository, groups domain.GroupRepository) *LeaderboardService {
	return &LeaderboardService{standings: standings, groups: groups}
}

// University ranks opted-in profiles at the named university.
func (s *LeaderboardService) University(ctx context.Context, name string) ([]domain.LeaderboardEntry, error) {
	return s.standings.UniversityStandings(ctx, name, universityLeaderboardLimit)
}

// Group ranks the members of one friend group.
func (s *LeaderboardService) Group(ctx context.Context, groupID int64) ([]domain.LeaderboardEntry, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}
	return s.standings.GroupStandings(ctx, groupID)
}
