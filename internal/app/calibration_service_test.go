package app_test

import (
	"context"
	"errors"
	"testing"

	"nightcap/internal/adapter/memory"
	"nightcap/internal/app"
	"nightcap/internal/domain"
)

func submitBatch(t *testing.T, svc *app.CalibrationService, userID int64, handleMore []bool, feelings []int) *app.SubmitResult {
	t.Helper()
	var res *app.SubmitResult
	for i := range handleMore {
		var err error
		res, err = svc.Submit(context.Background(), userID, 4, feelings[i], handleMore[i])
		if err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
	}
	return res
}

func TestCalibration_Validation(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyOnce)

	tests := []struct {
		name    string
		drinks  int
		feeling int
	}{
		{"rating too low", 4, 0},
		{"rating too high", 4, 6},
		{"negative drinks", -1, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), 1, tc.drinks, tc.feeling, false)
			if !errors.Is(err, app.ErrInvalidCalibration) {
				t.Fatalf("expected ErrInvalidCalibration, got %v", err)
			}
		})
	}
}

func TestCalibration_CountsUpToBatch(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyOnce)
	ctx := context.Background()

	res, err := svc.Submit(ctx, 1, 3, 4, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.SessionNumber != 1 || res.CalibrationComplete {
		t.Fatalf("unexpected result %+v", res)
	}

	count, complete, err := svc.Status(ctx, 1)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if count != 1 || complete {
		t.Fatalf("expected count 1 incomplete, got %d %v", count, complete)
	}
}

func TestCalibration_ThirdSubmissionRaisesLimits(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyOnce)
	ctx := context.Background()

	base := domain.CalculateLimits(160, domain.SexMale)

	res := submitBatch(t, svc, 1, []bool{true, true, false}, []int{4, 3, 4})
	if !res.CalibrationComplete {
		t.Fatal("expected calibration complete after third submission")
	}

	profile, err := db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	want := domain.LimitThresholds{Low: base.Low + 1, Med: base.Med + 1, High: base.High}
	if profile.Limits != want {
		t.Fatalf("limits = %+v; want %+v (base %+v)", profile.Limits, want, base)
	}
	if profile.CalibrationCount != 3 {
		t.Fatalf("calibration count = %d; want 3", profile.CalibrationCount)
	}
}

func TestCalibration_ThirdSubmissionLowersLimits(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 200, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyOnce)
	ctx := context.Background()

	base := domain.CalculateLimits(200, domain.SexMale)
	submitBatch(t, svc, 1, []bool{false, false, false}, []int{1, 2, 2})

	profile, err := db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	want := domain.ApplyAdjustment(base, -1)
	if profile.Limits != want {
		t.Fatalf("limits = %+v; want %+v", profile.Limits, want)
	}
}

func TestCalibration_BaseRecomputedFromCurrentProfile(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyOnce)
	ctx := context.Background()

	submitBatch(t, svc, 1, []bool{true, true}, []int{4, 3})

	// A weight edit between rounds must feed into the base used at the
	// trigger, not the limits stored at signup.
	weight := 200.0
	if _, err := db.UpdateProfile(ctx, 1, domain.ProfileUpdate{WeightLbs: &weight}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	if _, err := svc.Submit(ctx, 1, 4, 4, false); err != nil {
		t.Fatalf("third submit: %v", err)
	}

	profile, err := db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	want := domain.ApplyAdjustment(domain.CalculateLimits(200, domain.SexMale), 1)
	if profile.Limits != want {
		t.Fatalf("limits = %+v; want %+v", profile.Limits, want)
	}
}

func TestCalibration_PolicyOnceRejectsFourth(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyOnce)

	submitBatch(t, svc, 1, []bool{false, true, false}, []int{3, 3, 3})

	_, err := svc.Submit(context.Background(), 1, 2, 3, false)
	if !errors.Is(err, domain.ErrCalibrationComplete) {
		t.Fatalf("expected ErrCalibrationComplete, got %v", err)
	}
}

func TestCalibration_PolicyRollingRecalculates(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	svc := app.NewCalibrationService(db, db, app.PolicyRolling)
	ctx := context.Background()

	base := domain.CalculateLimits(160, domain.SexMale)

	// Neutral first batch holds the base.
	submitBatch(t, svc, 1, []bool{true, false, false}, []int{3, 3, 3})
	profile, _ := db.GetProfile(ctx, 1)
	if profile.Limits != base {
		t.Fatalf("neutral batch moved limits: %+v", profile.Limits)
	}

	// Another tolerant, good-feeling report tips the full history to +1.
	res, err := svc.Submit(ctx, 1, 5, 5, true)
	if err != nil {
		t.Fatalf("rolling submit: %v", err)
	}
	// The fourth report opens a new batch, so its number cycles back to 1.
	if res.SessionNumber != 1 {
		t.Fatalf("session number = %d; want 1", res.SessionNumber)
	}
	records, err := db.ListCalibrationRecords(ctx, 1)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	for _, rec := range records {
		if rec.SessionNumber < 1 || rec.SessionNumber > domain.CalibrationBatchSize {
			t.Fatalf("record number %d outside the 1..%d cycle", rec.SessionNumber, domain.CalibrationBatchSize)
		}
	}
	profile, _ = db.GetProfile(ctx, 1)
	want := domain.ApplyAdjustment(base, 1)
	if profile.Limits != want {
		t.Fatalf("limits = %+v; want %+v", profile.Limits, want)
	}
	if profile.CalibrationCount != 4 {
		t.Fatalf("count = %d; want 4", profile.CalibrationCount)
	}
}

// ---------------------------------------------------------------------------
// Store-inconsistency path uses a func-field mock so List can disagree with
// what was added.
// ---------------------------------------------------------------------------

type mockCalibrationRepo struct {
	addFn  func(ctx context.Context, rec domain.CalibrationRecord) (int64, error)
	listFn func(ctx context.Context, userID int64) ([]domain.CalibrationRecord, error)
}

func (m *mockCalibrationRepo) AddCalibrationRecord(ctx context.Context, rec domain.CalibrationRecord) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, rec)
	}
	return 1, nil
}

func (m *mockCalibrationRepo) ListCalibrationRecords(ctx context.Context, userID int64) ([]domain.CalibrationRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func TestCalibration_IncompleteHistorySkipsAdjustment(t *testing.T) {
	db := memory.New()
	newTestProfile(t, db, 1, 160, domain.SexMale)
	ctx := context.Background()

	limits := domain.CalculateLimits(160, domain.SexMale)
	if err := db.SetCalibrationState(ctx, 1, 2, nil); err != nil {
		t.Fatalf("seed count: %v", err)
	}

	records := &mockCalibrationRepo{
		listFn: func(_ context.Context, _ int64) ([]domain.CalibrationRecord, error) {
			// Only two of the expected three records come back.
			return []domain.CalibrationRecord{
				{SessionNumber: 1, FeelingRating: 5, CouldHandleMore: true},
				{SessionNumber: 2, FeelingRating: 5, CouldHandleMore: true},
			}, nil
		},
	}
	svc := app.NewCalibrationService(db, records, app.PolicyOnce)

	res, err := svc.Submit(ctx, 1, 4, 5, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.CalibrationComplete {
		t.Fatal("counter should still advance to complete")
	}

	profile, err := db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.CalibrationCount != 3 {
		t.Fatalf("count = %d; want 3", profile.CalibrationCount)
	}
	if profile.Limits != limits {
		t.Fatalf("limits changed despite incomplete history: %+v", profile.Limits)
	}
}
