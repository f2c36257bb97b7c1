// Package domain contains the core business entities and interfaces.
package domain

import "math"

// Sex is the biological sex used by the body-water distribution model.
type Sex string

// Recognised values for Sex. Anything else falls back to the male ratio.
const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

const (
	// StandardDrinkGrams is the grams of ethanol in one standard drink.
	StandardDrinkGrams = 14.0
	// EliminationRate is the BAC eliminated per hour.
	EliminationRate = 0.015

	lbsToGrams  = 453.592
	ratioMale   = 0.68
	ratioFemale = 0.55
)

// DrinkType identifies a loggable drink category.
type DrinkType string

// Supported drink types.
const (
	DrinkShot  DrinkType = "shot"
	DrinkBeer  DrinkType = "beer"
	DrinkMixed DrinkType = "mixed"
)

// StandardDrinkEquivalent returns the standard-drink value for a drink type.
// The second return is false for unrecognised types.
func StandardDrinkEquivalent(t DrinkType) (float64, bool) {
	switch t {
	case DrinkShot:
		return 1.0, true
	case DrinkBeer:
		return 1.0, true
	case DrinkMixed:
		return 1.5, true
	}
	return 0, false
}

func bodyWaterRatio(sex Sex) float64 {
	if sex == SexFemale {
		return ratioFemale
	}
	return ratioMale
}

// EstimateBAC estimates blood alcohol concentration with the Widmark formula:
// alcohol mass over body water, less a fixed elimination rate per elapsed hour.
// The result is floored at zero and rounded to 4 decimal places.
func EstimateBAC(totalStandardDrinks, weightLbs float64, sex Sex, hoursElapsed float64) float64 {
	alcoholGrams := totalStandardDrinks * StandardDrinkGrams
	bodyWeightGrams := weightLbs * lbsToGrams
	r := bodyWaterRatio(sex)
	bac := alcoholGrams/(bodyWeightGrams*r) - EliminationRate*hoursElapsed
	bac = math.Round(bac*10000) / 10000
	return math.Max(0, bac)
}

// DrinksForTargetBAC inverts the Widmark formula: how many standard drinks put
// a body at targetBAC after hoursElapsed hours of elimination. Rounded to the
// nearest whole drink, never below 1.
func DrinksForTargetBAC(targetBAC, weightLbs float64, sex Sex, hoursElapsed float64) int {
	bodyWeightGrams := weightLbs * lbsToGrams
	r := bodyWaterRatio(sex)
	alcoholGrams := (targetBAC + EliminationRate*hoursElapsed) * bodyWeightGrams * r
	n := int(math.Round(alcoholGrams / StandardDrinkGrams))
	if n < 1 {
		return 1
	}
	return n
}

// LimitThresholds are the personalised drink-count limits for the three BAC
// target tiers. Low <= Med <= High holds for any output of CalculateLimits.
type LimitThresholds struct {
	Low  int `json:"low"`
	Med  int `json:"med"`
	High int `json:"high"`
}

// Target BAC levels for the three threshold tiers.
const (
	TargetBACLow  = 0.04
	TargetBACMed  = 0.06
	TargetBACHigh = 0.08
)

// CalculateLimits derives the base drink-count thresholds from body metrics,
// assuming a one-hour reference pacing.
func CalculateLimits(weightLbs float64, sex Sex) LimitThresholds {
	return LimitThresholds{
		Low:  DrinksForTargetBAC(TargetBACLow, weightLbs, sex, 1),
		Med:  DrinksForTargetBAC(TargetBACMed, weightLbs, sex, 1),
		High: DrinksForTargetBAC(TargetBACHigh, weightLbs, sex, 1),
	}
}

// BACStatus describes the qualitative band a BAC value falls in.
type BACStatus struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// StatusForBAC maps a BAC value to its display band.
func StatusForBAC(bac float64) BACStatus {
	switch {
	case bac < 0.02:
		return BACStatus{Level: "sober", Message: "Sober"}
	case bac < 0.04:
		return BACStatus{Level: "low", Message: "Minimal effects"}
	case bac < 0.06:
		return BACStatus{Level: "buzzed", Message: "Feeling it"}
	case bac < 0.08:
		return BACStatus{Level: "tipsy", Message: "Tipsy - slow down"}
	case bac < 0.10:
		return BACStatus{Level: "over", Message: "At legal limit - stop"}
	}
	return BACStatus{Level: "danger", Message: "DANGER - stop immediately"}
}
