package domain

import (
	"context"
	"time"
)

// DrinkSession is one drinking occasion. At most one active session exists per
// user at any time.
type DrinkSession struct {
	ID                  string     `json:"id"`
	UserID              int64      `json:"userId"`
	StartedAt           time.Time  `json:"startedAt"`
	EndedAt             *time.Time `json:"endedAt"`
	IsActive            bool       `json:"isActive"`
	TotalStandardDrinks float64    `json:"totalStandardDrinks"`
	PeakBAC             float64    `json:"peakBac"`
	Status              string     `json:"status"`
}

// DrinkEvent is a single logged drink within a session. Append-only.
type DrinkEvent struct {
	ID                      int64     `json:"id"`
	SessionID               string    `json:"sessionId"`
	DrinkType               DrinkType `json:"drinkType"`
	Quantity                float64   `json:"quantity"`
	StandardDrinkEquivalent float64   `json:"standardDrinkEquivalent"`
	LoggedAt                time.Time `json:"loggedAt"`
}

// DrinkSessionRepository is the port for session persistence.
type DrinkSessionRepository interface {
	CreateSession(ctx context.Context, id string, userID int64, startedAt time.Time) (*DrinkSession, error)
	ActiveSession(ctx context.Context, userID int64) (*DrinkSession, error)
	ActiveSessions(ctx context.Context) ([]DrinkSession, error)
	GetSession(ctx context.Context, id string) (*DrinkSession, error)
	// UpdateTotals writes the running totals; peakBAC is merged with max(),
	// never overwritten downward.
	UpdateTotals(ctx context.Context, id string, totalStandardDrinks, peakBAC float64) error
	EndSession(ctx context.Context, id string, endedAt time.Time) error
	RecentSessions(ctx context.Context, userID int64, limit int) ([]DrinkSession, error)
}

// DrinkEventRepository is the port for drink log persistence.
type DrinkEventRepository interface {
	AddDrinkEvent(ctx context.Context, ev DrinkEvent) (int64, error)
	ListDrinkEvents(ctx context.Context, sessionID string) ([]DrinkEvent, error)
}
