package domain_test

import (
	"testing"

	"nightcap/internal/domain"
)

func TestPredictHangover(t *testing.T) {
	tests := []struct {
		name   string
		drinks float64
		weight float64
		sex    domain.Sex
		hours  float64
		want   domain.HangoverSeverity
	}{
		// 2 * (180/180) = 2 adjusted; pace min(2, 2/4)=0.5; score 2*0.85 = 1.7
		{"light night", 2, 180, domain.SexMale, 4, domain.HangoverNone},
		// 4 * (180/180) = 4; pace min(2, 4/4)=1; score 4*1.0 = 4
		{"moderate pace male", 4, 180, domain.SexMale, 4, domain.HangoverMild},
		// 6 * (140/140) = 6; pace min(2, 6/6)=1; score 6
		{"average night female", 6, 140, domain.SexFemale, 6, domain.HangoverModerate},
		// 8 * (180/160) = 9; pace capped at 2; score 9*1.3 = 11.7
		{"heavy fast night", 8, 160, domain.SexMale, 2, domain.HangoverSevere},
		// zero hours guards divide-by-zero: pace multiplier 1
		{"zero duration", 4, 180, domain.SexMale, 0, domain.HangoverMild},
		{"nothing consumed", 0, 160, domain.SexMale, 3, domain.HangoverNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.PredictHangover(tc.drinks, tc.weight, tc.sex, tc.hours)
			if got.Severity != tc.want {
				t.Errorf("PredictHangover(%v, %v, %q, %v) = %q; want %q",
					tc.drinks, tc.weight, tc.sex, tc.hours, got.Severity, tc.want)
			}
			if got.Message == "" {
				t.Error("forecast message is empty")
			}
		})
	}
}

func TestPredictHangover_LighterBodiesScoreHigher(t *testing.T) {
	light := domain.PredictHangover(5, 120, domain.SexMale, 3)
	heavy := domain.PredictHangover(5, 240, domain.SexMale, 3)
	order := map[domain.HangoverSeverity]int{
		domain.HangoverNone:     0,
		domain.HangoverMild:     1,
		domain.HangoverModerate: 2,
		domain.HangoverSevere:   3,
	}
	if order[light.Severity] < order[heavy.Severity] {
		t.Errorf("lighter body predicted %q, heavier %q", light.Severity, heavy.Severity)
	}
}
