package domain

import (
	"context"
	"time"
)

// Profile holds a user's body metrics, preferences and live drink limits.
type Profile struct {
	UserID             int64           `json:"userId"`
	DisplayName        string          `json:"displayName"`
	BiologicalSex      Sex             `json:"biologicalSex"`
	WeightLbs          float64         `json:"weightLbs"`
	HeightInches       int             `json:"heightInches"`
	UniversityName     string          `json:"universityName"`
	PersonalDrinkLimit int             `json:"personalDrinkLimit"`
	ShowOnLeaderboard  bool            `json:"showOnLeaderboard"`
	CalibrationCount   int             `json:"calibrationCount"`
	Limits             LimitThresholds `json:"limits"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName        *string
	BiologicalSex      *Sex
	WeightLbs          *float64
	HeightInches       *int
	UniversityName     *string
	PersonalDrinkLimit *int
	ShowOnLeaderboard  *bool
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, userID int64, displayName string) (*Profile, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*Profile, error)
	SetLimits(ctx context.Context, userID int64, limits LimitThresholds) error
	SetCalibrationState(ctx context.Context, userID int64, count int, limits *LimitThresholds) error
}
