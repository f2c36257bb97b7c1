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

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfile(t *testing.T, db *memory.DB, userID int64, weight float64, sex domain.Sex) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.CreateProfile(ctx, userID, "test user"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := db.UpdateProfile(ctx, userID, domain.ProfileUpdate{WeightLbs: &weight, BiologicalSex: &sex}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := db.SetLimits(ctx, userID, domain.CalculateLimits(weight, sex)); err != nil {
		t.Fatalf("set limits: %v", err)
	}
}

func newSessionService(t *testing.T, db *memory.DB) (*app.SessionService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)}
	svc := app.NewSessionService(db, db, db, nil)
	svc.SetClock(clock.now)
	return svc, clock
}

func TestStartSession(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, _ := newSessionService(t, db)

	session, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.IsActive || session.ID == "" {
		t.Fatalf("expected active session with id, got %+v", session)
	}
}

func TestStartSession_Conflict(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, _ := newSessionService(t, db)

	if _, err := svc.Start(context.Background(), 1); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := svc.Start(context.Background(), 1)
	if !errors.Is(err, domain.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
}

func TestLogDrink_InvalidType(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, _ := newSessionService(t, db)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.LogDrink(ctx, 1, domain.DrinkType("wine"), 1)
	if !errors.Is(err, domain.ErrInvalidDrinkType) {
		t.Fatalf("expected ErrInvalidDrinkType, got %v", err)
	}

	// Totals must be untouched by the rejected log.
	session, err := db.GetSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.TotalStandardDrinks != 0 || session.PeakBAC != 0 {
		t.Fatalf("rejected log mutated totals: %+v", session)
	}
}

func TestLogDrink_NoActiveSession(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, _ := newSessionService(t, db)

	_, err := svc.LogDrink(context.Background(), 1, domain.DrinkBeer, 1)
	if !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestLogDrink_AccumulatesTotalsAndPeak(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, clock := newSessionService(t, db)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := svc.LogDrink(ctx, 1, domain.DrinkShot, 1)
	if err != nil {
		t.Fatalf("log shot: %v", err)
	}
	if res.TotalStandardDrinks != 1.0 {
		t.Fatalf("expected total 1.0, got %v", res.TotalStandardDrinks)
	}

	res, err = svc.LogDrink(ctx, 1, domain.DrinkMixed, 1)
	if err != nil {
		t.Fatalf("log mixed: %v", err)
	}
	if res.TotalStandardDrinks != 2.5 {
		t.Fatalf("expected total 2.5, got %v", res.TotalStandardDrinks)
	}
	want := domain.EstimateBAC(2.5, 160, domain.SexMale, 0)
	if res.CurrentBAC != want {
		t.Fatalf("expected BAC %v, got %v", want, res.CurrentBAC)
	}
	peakSoFar := res.PeakBAC

	// Hours later the new BAC is lower, but the peak watermark holds.
	clock.advance(4 * time.Hour)
	res, err = svc.LogDrink(ctx, 1, domain.DrinkBeer, 1)
	if err != nil {
		t.Fatalf("log beer: %v", err)
	}
	if res.TotalStandardDrinks != 3.5 {
		t.Fatalf("expected total 3.5, got %v", res.TotalStandardDrinks)
	}
	if res.CurrentBAC >= peakSoFar {
		t.Fatalf("expected decayed BAC below %v, got %v", peakSoFar, res.CurrentBAC)
	}
	if res.PeakBAC != peakSoFar {
		t.Fatalf("peak watermark moved from %v to %v", peakSoFar, res.PeakBAC)
	}
}

func TestLogDrink_QuantityScalesEquivalent(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, _ := newSessionService(t, db)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := svc.LogDrink(ctx, 1, domain.DrinkMixed, 2)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if res.TotalStandardDrinks != 3.0 {
		t.Fatalf("expected total 3.0 for two mixed drinks, got %v", res.TotalStandardDrinks)
	}
}

func TestEndSession(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, clock := newSessionService(t, db)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.advance(2 * time.Hour)

	ended, err := svc.End(ctx, 1)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.ID != started.ID {
		t.Fatalf("ended wrong session: %s != %s", ended.ID, started.ID)
	}
	if ended.IsActive || ended.EndedAt == nil {
		t.Fatalf("session not closed: %+v", ended)
	}

	// A second end has nothing to close.
	if _, err := svc.End(ctx, 1); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestEndSession_NoActiveSession(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, _ := newSessionService(t, db)

	_, err := svc.End(context.Background(), 1)
	if !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestCurrentBAC_Decays(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, clock := newSessionService(t, db)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := svc.LogDrink(ctx, 1, domain.DrinkShot, 1); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	bac0, err := svc.CurrentBAC(ctx, 1)
	if err != nil {
		t.Fatalf("current bac: %v", err)
	}
	clock.advance(time.Hour)
	bac1, err := svc.CurrentBAC(ctx, 1)
	if err != nil {
		t.Fatalf("current bac: %v", err)
	}
	if bac0 > 0 && bac1 >= bac0 {
		t.Fatalf("BAC did not decay: %v -> %v", bac0, bac1)
	}
}

func TestSummarize(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc, clock := newSessionService(t, db)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.LogDrink(ctx, 1, domain.DrinkBeer, 1); err != nil {
			t.Fatalf("log: %v", err)
		}
		clock.advance(30 * time.Minute)
	}
	if _, err := svc.End(ctx, 1); err != nil {
		t.Fatalf("end: %v", err)
	}

	summary, err := svc.Summarize(ctx, 1, started.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summary.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(summary.Events))
	}
	if summary.Forecast.Severity == "" {
		t.Fatal("missing hangover forecast")
	}
	if summary.Session.Status != "completed" {
		t.Fatalf("unexpected status %q", summary.Session.Status)
	}
}

func TestSummarize_WrongUser(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	newTestProfile(t, db, 2, 140, domain.SexFemale)
	svc, _ := newSessionService(t, db)
	ctx := context.Background()

	started, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Summarize(ctx, 2, started.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for another user's session, got %v", err)
	}
}

func TestLogDrink_OverLimitAlertsFriends(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	newTestProfile(t, db, 2, 140, domain.SexFemale)
	ctx := context.Background()

	// Tight limits so two beers cross the medium threshold.
	if err := db.SetLimits(ctx, 1, domain.LimitThresholds{Low: 1, Med: 2, High: 4}); err != nil {
		t.Fatalf("set limits: %v", err)
	}

	f, err := db.CreateFriendship(ctx, 2, 1)
	if err != nil {
		t.Fatalf("create friendship: %v", err)
	}
	if err := db.SetFriendshipStatus(ctx, f.ID, domain.FriendshipAccepted); err != nil {
		t.Fatalf("accept friendship: %v", err)
	}

	alerts := app.NewAlertService(db, db, db)
	svc := app.NewSessionService(db, db, db, alerts)
	clock := &fakeClock{t: time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)}
	svc.SetClock(clock.now)

	if _, err := svc.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.LogDrink(ctx, 1, domain.DrinkBeer, 1); err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, err := svc.LogDrink(ctx, 1, domain.DrinkBeer, 1); err != nil {
		t.Fatalf("log: %v", err)
	}

	got, err := alerts.Alerts(ctx, 2, 10)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 alert for friend, got %d", len(got))
	}
	if got[0].UserID != 1 || got[0].Message == "" {
		t.Fatalf("unexpected alert %+v", got[0])
	}
}
