package app

import (
	"context"

	"nightcap/internal/domain"
)

// ProfileService encapsulates profile and live-threshold use cases.
type ProfileService struct {
	profiles domain.ProfileRepository
	records  domain.CalibrationRepository
}

// NewProfileService creates a ProfileService backed by the given repositories.
func NewProfileService(profiles domain.ProfileRepository, records domain.CalibrationRepository) *ProfileService {
	return &ProfileService{profiles: profiles, records: records}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

// Update applies a partial profile edit. Body-metric changes recompute the
// base thresholds immediately; a completed calibration batch is re-applied on
// top so the correction survives weight and sex edits.
func (s *ProfileService) Update(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.Profile, error) {
	profile, err := s.profiles.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	if upd.WeightLbs == nil && upd.BiologicalSex == nil {
		return profile, nil
	}

	limits, err := s.liveLimits(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetLimits(ctx, userID, limits); err != nil {
		return nil, err
	}
	profile.Limits = limits
	return profile, nil
}

// LimitsResult is the live threshold state exposed to the client.
type LimitsResult struct {
	Limits           domain.LimitThresholds `json:"limits"`
	PersonalLimit    int                    `json:"personalLimit"`
	CalibrationCount int                    `json:"calibrationCount"`
}

// Limits returns the user's live thresholds: the stored values before
// calibration completes, and the freshly recomputed calibrated values after.
func (s *ProfileService) Limits(ctx context.Context, userID int64) (*LimitsResult, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	limits := profile.Limits
	if profile.CalibrationCount >= domain.CalibrationBatchSize {
		limits, err = s.liveLimits(ctx, profile)
		if err != nil {
			return nil, err
		}
	}

	return &LimitsResult{
		Limits:           limits,
		PersonalLimit:    profile.PersonalDrinkLimit,
		CalibrationCount: profile.CalibrationCount,
	}, nil
}

// liveLimits recomputes base thresholds from current body metrics and layers
// the calibration batch adjustment on when one is complete.
func (s *ProfileService) liveLimits(ctx context.Context, profile *domain.Profile) (domain.LimitThresholds, error) {
	base := domain.CalculateLimits(profile.WeightLbs, profile.BiologicalSex)
	if profile.CalibrationCount < domain.CalibrationBatchSize {
		return base, nil
	}

	records, err := s.records.ListCalibrationRecords(ctx, profile.UserID)
	if err != nil {
		return domain.LimitThresholds{}, err
	}
	if len(records) < domain.CalibrationBatchSize {
		return base, nil
	}
	return domain.ApplyAdjustment(base, domain.CalibrationAdjustment(records)), nil
}
