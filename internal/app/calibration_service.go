package app

import (
	"context"
	"errors"

	"nightcap/internal/domain"
)

// RecalibratePolicy controls what happens to calibration submissions after
// the first batch of three is complete.
type RecalibratePolicy string

// Supported policies. PolicyOnce rejects submissions past the first batch;
// PolicyRolling accepts them and re-runs the batch rule over the full
// history on every submission from the third onward.
const (
	PolicyOnce    RecalibratePolicy = "once"
	PolicyRolling RecalibratePolicy = "rolling"
)

// ErrInvalidCalibration indicates an out-of-range calibration answer.
var ErrInvalidCalibration = errors.New("feeling rating must be 1-5 and drinks consumed non-negative")

// CalibrationService aggregates post-session self-reports into personalised
// threshold corrections.
type CalibrationService struct {
	profiles domain.ProfileRepository
	records  domain.CalibrationRepository
	policy   RecalibratePolicy
}

// NewCalibrationService creates a CalibrationService. An empty policy
// defaults to PolicyOnce, matching the one-batch survey flow.
func NewCalibrationService(profiles domain.ProfileRepository, records domain.CalibrationRepository, policy RecalibratePolicy) *CalibrationService {
	if policy == "" {
		policy = PolicyOnce
	}
	return &CalibrationService{profiles: profiles, records: records, policy: policy}
}

// SubmitResult reports where the user is in the calibration cycle.
type SubmitResult struct {
	SessionNumber       int  `json:"sessionNumber"`
	CalibrationComplete bool `json:"calibrationComplete"`
}

// Submit records one self-report. On the submission that completes a batch,
// the user's thresholds are recomputed: base limits fresh from the current
// body metrics, plus the batch adjustment, with the asymmetric high clamp.
// If fewer records than a full batch are retrievable at that point, the
// adjustment is skipped and only the counter advances.
func (s *CalibrationService) Submit(ctx context.Context, userID int64, drinksConsumed, feelingRating int, couldHandleMore bool) (*SubmitResult, error) {
	if feelingRating < 1 || feelingRating > 5 || drinksConsumed < 0 {
		return nil, ErrInvalidCalibration
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	if profile.CalibrationCount >= domain.CalibrationBatchSize && s.policy == PolicyOnce {
		return nil, domain.ErrCalibrationComplete
	}

	newCount := profile.CalibrationCount + 1
	// The record number restarts at 1 on every batch so rolling
	// recalibration keeps the 1..3 cycle.
	sessionNumber := profile.CalibrationCount%domain.CalibrationBatchSize + 1
	if _, err := s.records.AddCalibrationRecord(ctx, domain.CalibrationRecord{
		UserID:          userID,
		SessionNumber:   sessionNumber,
		DrinksConsumed:  drinksConsumed,
		FeelingRating:   feelingRating,
		CouldHandleMore: couldHandleMore,
	}); err != nil {
		return nil, err
	}

	var limits *domain.LimitThresholds

	if newCount >= domain.CalibrationBatchSize {
		records, err := s.records.ListCalibrationRecords(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(records) >= domain.CalibrationBatchSize {
			base := domain.CalculateLimits(profile.WeightLbs, profile.BiologicalSex)
			adjusted := domain.ApplyAdjustment(base, domain.CalibrationAdjustment(records))
			limits = &adjusted
		}
		// Fewer records than expected means a store inconsistency; keep the
		// prior thresholds and still advance the counter.
	}

	if err := s.profiles.SetCalibrationState(ctx, userID, newCount, limits); err != nil {
		return nil, err
	}

	return &SubmitResult{
		SessionNumber:       sessionNumber,
		CalibrationComplete: newCount >= domain.CalibrationBatchSize,
	}, nil
}

// Status reports the user's calibration progress.
func (s *CalibrationService) Status(ctx context.Context, userID int64) (count int, complete bool, err error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if profile == nil {
		return 0, false, domain.ErrProfileNotFound
	}
	return profile.CalibrationCount, profile.CalibrationCount >= domain.CalibrationBatchSize, nil
}
