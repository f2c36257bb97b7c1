package domain_test

import (
	"testing"

	"nightcap/internal/domain"
)

func batch(handleMore []bool, feelings []int) []domain.CalibrationRecord {
	recs := make([]domain.CalibrationRecord, len(handleMore))
	for i := range handleMore {
		recs[i] = domain.CalibrationRecord{
			SessionNumber:   i + 1,
			FeelingRating:   feelings[i],
			CouldHandleMore: handleMore[i],
		}
	}
	return recs
}

func TestCalibrationAdjustment(t *testing.T) {
	tests := []struct {
		name       string
		handleMore []bool
		feelings   []int
		want       int
	}{
		{"tolerant and feeling good raises", []bool{true, true, false}, []int{4, 3, 4}, 1},
		{"all headroom great nights", []bool{true, true, true}, []int{5, 5, 5}, 1},
		{"no headroom rough nights lowers", []bool{false, false, false}, []int{1, 2, 2}, -1},
		{"mixed signals hold", []bool{true, false, false}, []int{3, 3, 3}, 0},
		{"headroom but felt bad holds", []bool{true, true, false}, []int{1, 2, 2}, 0},
		{"no headroom but felt fine holds", []bool{false, false, false}, []int{3, 4, 3}, 0},
		{"boundary avg exactly 3 raises", []bool{true, true, false}, []int{2, 3, 4}, 1},
		{"boundary avg exactly 2 lowers", []bool{false, false, false}, []int{2, 2, 2}, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.CalibrationAdjustment(batch(tc.handleMore, tc.feelings))
			if got != tc.want {
				t.Errorf("CalibrationAdjustment(%v, %v) = %d; want %d",
					tc.handleMore, tc.feelings, got, tc.want)
			}
		})
	}
}

func TestCalibrationAdjustment_EmptyBatch(t *testing.T) {
	if got := domain.CalibrationAdjustment(nil); got != 0 {
		t.Errorf("CalibrationAdjustment(nil) = %d; want 0", got)
	}
}

func TestApplyAdjustment(t *testing.T) {
	base := domain.LimitThresholds{Low: 3, Med: 5, High: 7}

	tests := []struct {
		name       string
		adjustment int
		want       domain.LimitThresholds
	}{
		// High never rises, even on a positive adjustment.
		{"raise", 1, domain.LimitThresholds{Low: 4, Med: 6, High: 7}},
		{"lower", -1, domain.LimitThresholds{Low: 2, Med: 4, High: 6}},
		{"hold", 0, base},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ApplyAdjustment(base, tc.adjustment)
			if got != tc.want {
				t.Errorf("ApplyAdjustment(%+v, %d) = %+v; want %+v", base, tc.adjustment, got, tc.want)
			}
		})
	}
}

func TestApplyAdjustment_Floors(t *testing.T) {
	got := domain.ApplyAdjustment(domain.LimitThresholds{Low: 1, Med: 2, High: 3}, -1)
	if got.Low < 1 || got.Med < 2 {
		t.Errorf("floors violated: %+v", got)
	}
	if got != (domain.LimitThresholds{Low: 1, Med: 2, High: 2}) {
		t.Errorf("ApplyAdjustment floor case = %+v", got)
	}
}

func TestApplyAdjustment_HighNeverExceedsBase(t *testing.T) {
	for adj := -1; adj <= 1; adj++ {
		for _, base := range []domain.LimitThresholds{
			{Low: 1, Med: 2, High: 3},
			{Low: 3, Med: 5, High: 7},
			{Low: 5, Med: 8, High: 11},
		} {
			if got := domain.ApplyAdjustment(base, adj); got.High > base.High {
				t.Errorf("adjustment %d raised high from %d to %d", adj, base.High, got.High)
			}
		}
	}
}
