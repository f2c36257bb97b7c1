package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nightcap/internal/adapter/memory"
	"nightcap/internal/app"
	"nightcap/internal/domain"
)

func TestMonitorSweep_KeepsPeakWatermark(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)}
	svc := app.NewSessionService(db, db, db, nil)
	svc.SetClock(clock.now)

	started, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := svc.LogDrink(ctx, 1, domain.DrinkShot, 1); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	session, err := db.GetSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	peak := session.PeakBAC
	if peak <= 0 {
		t.Fatalf("expected positive peak, got %v", peak)
	}

	monitor := app.NewMonitor(db, db, 0)
	monitor.SetClock(clock.now)

	// Hours later the live BAC has decayed to zero, but a sweep must never
	// lower the stored peak.
	clock.advance(8 * time.Hour)
	if err := monitor.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	session, err = db.GetSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.PeakBAC != peak {
		t.Fatalf("sweep moved peak from %v to %v", peak, session.PeakBAC)
	}
	if session.TotalStandardDrinks != 6 {
		t.Fatalf("sweep changed totals: %v", session.TotalStandardDrinks)
	}
}

func TestMonitorSweep_RaisesPeakWhileClimbing(t *testing.T) {
	db := memory.New()
	// Heavy session for a light body so BAC is still climbing relative to the
	// stored watermark when the sweep runs.
	newTestProfile(t, db, 1, 120, domain.SexFemale)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)}
	started, err := db.CreateSession(ctx, "s-1", 1, clock.t)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	// Totals written without a peak, as if the event-triggered recompute lost
	// the race.
	if err := db.UpdateTotals(ctx, started.ID, 5, 0); err != nil {
		t.Fatalf("update totals: %v", err)
	}

	monitor := app.NewMonitor(db, db, 0)
	monitor.SetClock(clock.now)
	if err := monitor.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	session, err := db.GetSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	want := domain.EstimateBAC(5, 120, domain.SexFemale, 0)
	if session.PeakBAC != want {
		t.Fatalf("expected peak %v after sweep, got %v", want, session.PeakBAC)
	}
}

// flakyProfiles fails profile loads for one user so a sweep sees a per-session
// error in the middle of its pass.
type flakyProfiles struct {
	domain.ProfileRepository
	badUser int64
}

func (f flakyProfiles) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	if userID == f.badUser {
		return nil, errors.New("profile row corrupt")
	}
	return f.ProfileRepository.GetProfile(ctx, userID)
}

func TestMonitorSweep_ContinuesPastFailingSession(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	newTestProfile(t, db, 2, 120, domain.SexFemale)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)}
	// The failing user's session comes first so the healthy one only gets
	// swept if the loop keeps going.
	if _, err := db.CreateSession(ctx, "s-bad", 1, clock.t); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := db.CreateSession(ctx, "s-good", 2, clock.t); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := db.UpdateTotals(ctx, "s-good", 5, 0); err != nil {
		t.Fatalf("update totals: %v", err)
	}

	monitor := app.NewMonitor(db, flakyProfiles{ProfileRepository: db, badUser: 1}, 0)
	monitor.SetClock(clock.now)

	if err := monitor.Sweep(ctx); err == nil {
		t.Fatal("expected sweep to report the failing session")
	}

	session, err := db.GetSession(ctx, "s-good")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	want := domain.EstimateBAC(5, 120, domain.SexFemale, 0)
	if session.PeakBAC != want {
		t.Fatalf("healthy session not swept: peak %v, want %v", session.PeakBAC, want)
	}
}

func TestMonitorRun_StopsOnCancel(t *testing.T) {
	db := memory.New()
	monitor := app.NewMonitor(db, db, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
}
