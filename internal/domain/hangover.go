package domain

import "math"

// HangoverSeverity is the qualitative forecast band.
type HangoverSeverity string

// Severity bands in increasing order.
const (
	HangoverNone     HangoverSeverity = "none"
	HangoverMild     HangoverSeverity = "mild"
	HangoverModerate HangoverSeverity = "moderate"
	HangoverSevere   HangoverSeverity = "severe"
)

// HangoverForecast is the next-morning prediction for a completed session.
type HangoverForecast struct {
	Severity HangoverSeverity `json:"severity"`
	Message  string           `json:"message"`
}

// PredictHangover forecasts hangover severity from session totals. Drinks are
// normalised against a reference body weight (140 lbs female, 180 lbs male)
// and weighted by drinking pace, capped at double pace.
func PredictHangover(totalStandardDrinks, weightLbs float64, sex Sex, hoursDrinking float64) HangoverForecast {
	weightFactor := 180 / weightLbs
	if sex == SexFemale {
		weightFactor = 140 / weightLbs
	}
	adjustedDrinks := totalStandardDrinks * weightFactor

	paceMultiplier := 1.0
	if hoursDrinking > 0 {
		paceMultiplier = math.Min(2, totalStandardDrinks/hoursDrinking)
	}

	score := adjustedDrinks * (0.7 + 0.3*paceMultiplier)

	switch {
	case score < 3:
		return HangoverForecast{HangoverNone, "You should feel fine! Stay hydrated just in case."}
	case score < 5:
		return HangoverForecast{HangoverMild, "Mild: slight headache possible. Drink water before bed."}
	case score < 8:
		return HangoverForecast{HangoverModerate, "Moderate: expect headache, fatigue, nausea. Hydrate well!"}
	}
	return HangoverForecast{HangoverSevere, "Severe: rough morning ahead. Water, electrolytes, rest."}
}
