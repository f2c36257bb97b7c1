package domain

import "errors"

// Error taxonomy shared by services and adapters.
var (
	// ErrInvalidDrinkType indicates a drink type outside shot/beer/mixed.
	ErrInvalidDrinkType = errors.New("invalid drink type")
	// ErrInvalidSex indicates a biological sex outside male/female.
	ErrInvalidSex = errors.New("invalid biological sex")
	// ErrNoActiveSession indicates an operation that needs an open session.
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionConflict indicates a start attempt while a session is active.
	ErrSessionConflict = errors.New("already have an active session")
	// ErrSessionNotFound indicates the requested drink session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrProfileNotFound indicates the user has no profile row.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrCalibrationComplete indicates the calibration batch is already done.
	ErrCalibrationComplete = errors.New("calibration already complete")
	// ErrGroupNotFound indicates the requested friend group does not exist.
	ErrGroupNotFound = errors.New("group not found")
)
