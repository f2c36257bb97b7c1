package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"nightcap/internal/domain"
)

// DefaultRecomputeInterval is how often active sessions are refreshed while
// no drinks are being logged. BAC decays continuously, so the stored peak and
// displayed value go stale without it.
const DefaultRecomputeInterval = 30 * time.Second

// Monitor periodically recomputes BAC for every active session. The timer
// lives here, outside the session service, so the recompute itself stays a
// pure calculation that tests drive directly through Sweep.
type Monitor struct {
	sessions domain.DrinkSessionRepository
	profiles domain.ProfileRepository
	interval time.Duration
	now      func() time.Time
}

// NewMonitor creates a Monitor over the given repositories. A non-positive
// interval falls back to DefaultRecomputeInterval.
func NewMonitor(sessions domain.DrinkSessionRepository, profiles domain.ProfileRepository, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultRecomputeInterval
	}
	return &Monitor{sessions: sessions, profiles: profiles, interval: interval, now: time.Now}
}

// SetClock overrides the time source. Tests use this to advance time manually.
func (m *Monitor) SetClock(now func() time.Time) { m.now = now }

// Run sweeps on a fixed cadence until ctx is canceled. A canceled tick simply
// does not occur; each sweep is a pure recompute plus one idempotent update.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Sweep(ctx); err != nil {
				log.Printf("session monitor sweep: %v", err)
			}
		}
	}
}

// Sweep recomputes BAC for every active session and merges the peak
// watermark. The repository merges peak with max(), so a sweep racing a drink
// log can never lower a concurrently written peak. A failure on one session
// must not starve the rest, so errors are collected and returned joined.
func (m *Monitor) Sweep(ctx context.Context) error {
	active, err := m.sessions.ActiveSessions(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	var errs []error
	for i := range active {
		session := &active[i]
		profile, err := m.profiles.GetProfile(ctx, session.UserID)
		if err != nil {
			log.Printf("sweep session %s: load profile: %v", session.ID, err)
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID, err))
			continue
		}
		if profile == nil {
			continue
		}

		hours := now.Sub(session.StartedAt).Hours()
		bac := domain.EstimateBAC(session.TotalStandardDrinks, profile.WeightLbs, profile.BiologicalSex, hours)
		peak := math.Max(session.PeakBAC, bac)

		if err := m.sessions.UpdateTotals(ctx, session.ID, session.TotalStandardDrinks, peak); err != nil {
			log.Printf("sweep session %s: update totals: %v", session.ID, err)
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID, err))
		}
	}
	return errors.Join(errs...)
}
