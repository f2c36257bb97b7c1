package domain

import (
	"context"
	"time"
)

// CalibrationBatchSize is the number of self-reports that form one
// calibration batch.
const CalibrationBatchSize = 3

// CalibrationRecord is one post-session self-report. SessionNumber is the
// position within a three-report batch and cycles back to 1 when
// recalibration continues past the first batch.
type CalibrationRecord struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	SessionNumber   int       `json:"sessionNumber"`
	DrinksConsumed  int       `json:"drinksConsumed"`
	FeelingRating   int       `json:"feelingRating"`
	CouldHandleMore bool      `json:"couldHandleMore"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CalibrationRepository is the port for calibration record persistence.
type CalibrationRepository interface {
	AddCalibrationRecord(ctx context.Context, rec CalibrationRecord) (int64, error)
	ListCalibrationRecords(ctx context.Context, userID int64) ([]CalibrationRecord, error)
}

// CalibrationAdjustment computes the additive threshold correction from a
// batch of self-reports. +1 when the user reports headroom on tolerance,
// -1 when they report none and felt bad, 0 otherwise.
func CalibrationAdjustment(records []CalibrationRecord) int {
	if len(records) == 0 {
		return 0
	}

	handleMoreCount := 0
	feelingSum := 0
	for _, r := range records {
		if r.CouldHandleMore {
			handleMoreCount++
		}
		feelingSum += r.FeelingRating
	}
	avgFeeling := float64(feelingSum) / float64(len(records))

	if handleMoreCount >= 2 && avgFeeling >= 3 {
		return 1
	}
	if handleMoreCount == 0 && avgFeeling <= 2 {
		return -1
	}
	return 0
}

// ApplyAdjustment layers a calibration correction on base thresholds. Low and
// Med keep their safety floors. High can only drop or hold, never rise: the
// danger threshold is deliberately never raised by calibration.
func ApplyAdjustment(base LimitThresholds, adjustment int) LimitThresholds {
	return LimitThresholds{
		Low:  max(1, base.Low+adjustment),
		Med:  max(2, base.Med+adjustment),
		High: min(base.High+adjustment, base.High),
	}
}
