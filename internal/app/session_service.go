// Package app holds the application services and business logic.
package app

import (
	"context"
	"log"
	"math"
	"time"

	"nightcap/internal/domain"

	"github.com/google/uuid"
)

// SessionService tracks the live numeric state of drinking occasions.
type SessionService struct {
	sessions domain.DrinkSessionRepository
	events   domain.DrinkEventRepository
	profiles domain.ProfileRepository
	alerts   *AlertService

	now func() time.Time
}

// NewSessionService creates a SessionService backed by the given repositories.
// alerts may be nil; over-limit fan-out is then skipped.
func NewSessionService(sessions domain.DrinkSessionRepository, events domain.DrinkEventRepository, profiles domain.ProfileRepository, alerts *AlertService) *SessionService {
	return &SessionService{
		sessions: sessions,
		events:   events,
		profiles: profiles,
		alerts:   alerts,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests use this to advance time manually.
func (s *SessionService) SetClock(now func() time.Time) { s.now = now }

// Start opens a new session for the user. Returns ErrSessionConflict when an
// active session already exists.
func (s *SessionService) Start(ctx context.Context, userID int64) (*domain.DrinkSession, error) {
	existing, err := s.sessions.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSessionConflict
	}
	return s.sessions.CreateSession(ctx, uuid.NewString(), userID, s.now())
}

// Active returns the user's active session, or nil when none is open.
func (s *SessionService) Active(ctx context.Context, userID int64) (*domain.DrinkSession, error) {
	return s.sessions.ActiveSession(ctx, userID)
}

// LogResult is the derived state returned after logging a drink.
type LogResult struct {
	Event               *domain.DrinkEvent `json:"log"`
	TotalStandardDrinks float64            `json:"totalStandardDrinks"`
	CurrentBAC          float64            `json:"currentBac"`
	PeakBAC             float64            `json:"peakBac"`
	Status              domain.BACStatus   `json:"status"`
}

// LogDrink appends a drink event to the active session and recomputes the
// session's totals and BAC. The drink type is validated first; a rejected log
// leaves persisted totals untouched.
func (s *SessionService) LogDrink(ctx context.Context, userID int64, drinkType domain.DrinkType, quantity float64) (*LogResult, error) {
	equiv, ok := domain.StandardDrinkEquivalent(drinkType)
	if !ok {
		return nil, domain.ErrInvalidDrinkType
	}
	if quantity <= 0 {
		quantity = 1
	}

	session, err := s.sessions.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNoActiveSession
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	now := s.now()
	ev := domain.DrinkEvent{
		SessionID:               session.ID,
		DrinkType:               drinkType,
		Quantity:                quantity,
		StandardDrinkEquivalent: equiv * quantity,
		LoggedAt:                now,
	}
	id, err := s.events.AddDrinkEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	ev.ID = id

	// Totals derive from the full ordered event history, not from a
	// read-modify-write on the previous running sum.
	events, err := s.events.ListDrinkEvents(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, e := range events {
		total += e.StandardDrinkEquivalent
	}

	hours := now.Sub(session.StartedAt).Hours()
	bac := domain.EstimateBAC(total, profile.WeightLbs, profile.BiologicalSex, hours)
	peak := math.Max(session.PeakBAC, bac)

	if err := s.sessions.UpdateTotals(ctx, session.ID, total, peak); err != nil {
		return nil, err
	}

	s.checkLimits(ctx, profile, session.ID, total, bac)

	return &LogResult{
		Event:               &ev,
		TotalStandardDrinks: total,
		CurrentBAC:          bac,
		PeakBAC:             peak,
		Status:              domain.StatusForBAC(bac),
	}, nil
}

// checkLimits fans out friend alerts when the session total crosses the
// user's calibrated thresholds. Alert failures never fail the drink log.
func (s *SessionService) checkLimits(ctx context.Context, profile *domain.Profile, sessionID string, total, bac float64) {
	if s.alerts == nil {
		return
	}
	var level string
	switch {
	case profile.Limits.High > 0 && total >= float64(profile.Limits.High):
		level = "high"
	case profile.Limits.Med > 0 && total >= float64(profile.Limits.Med):
		level = "medium"
	default:
		return
	}
	if err := s.alerts.SendFriendAlerts(ctx, profile.UserID, sessionID, bac, level); err != nil {
		log.Printf("friend alerts for session %s: %v", sessionID, err)
	}
}

// End closes the user's active session and returns it for the summary and
// calibration flows. Returns ErrNoActiveSession when none is open.
func (s *SessionService) End(ctx context.Context, userID int64) (*domain.DrinkSession, error) {
	session, err := s.sessions.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNoActiveSession
	}

	endedAt := s.now()
	if err := s.sessions.EndSession(ctx, session.ID, endedAt); err != nil {
		return nil, err
	}
	session.IsActive = false
	session.EndedAt = &endedAt
	session.Status = "completed"
	return session, nil
}

// CurrentBAC recomputes the user's BAC from stored totals and the wall clock.
func (s *SessionService) CurrentBAC(ctx context.Context, userID int64) (float64, error) {
	session, err := s.sessions.ActiveSession(ctx, userID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, domain.ErrNoActiveSession
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, domain.ErrProfileNotFound
	}
	hours := s.now().Sub(session.StartedAt).Hours()
	return domain.EstimateBAC(session.TotalStandardDrinks, profile.WeightLbs, profile.BiologicalSex, hours), nil
}

// Summary is a closed or open session with its event history and forecast.
type Summary struct {
	Session  *domain.DrinkSession    `json:"session"`
	Events   []domain.DrinkEvent     `json:"logs"`
	Forecast domain.HangoverForecast `json:"forecast"`
}

// Summarize returns a session, its ordered drink events and the hangover
// forecast for its duration.
func (s *SessionService) Summarize(ctx context.Context, userID int64, sessionID string) (*Summary, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}

	events, err := s.events.ListDrinkEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	end := s.now()
	if session.EndedAt != nil {
		end = *session.EndedAt
	}
	hours := end.Sub(session.StartedAt).Hours()
	forecast := domain.PredictHangover(session.TotalStandardDrinks, profile.WeightLbs, profile.BiologicalSex, hours)

	return &Summary{Session: session, Events: events, Forecast: forecast}, nil
}

// Recent lists the user's most recent sessions up to limit.
func (s *SessionService) Recent(ctx context.Context, userID int64, limit int) ([]domain.DrinkSession, error) {
	return s.sessions.RecentSessions(ctx, userID, limit)
}
