package goals

import (
	"math"

	"dining-planner/internal/planner"
)

const (
	cmPerInch = 2.54
	kgPerLb   = 0.453592
)

// Breakdown exposes the intermediate values of a translation.
type Breakdown struct {
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	LBMKg    float64 `json:"lbm_kg"`
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
}

// Compute converts a profile into rounded daily targets. BMR follows the
// Mifflin-St Jeor equation and macro grams scale a lean body mass proxy.
func Compute(p Profile) (planner.Goals, Breakdown, error) {
	if err := p.Validate(); err != nil {
		return planner.Goals{}, Breakdown{}, err
	}

	heightCm := p.HeightIn * cmPerInch
	weightKg := p.WeightLb * kgPerLb

	sexConst := 5.0
	lbmFactor := 0.8
	if p.Sex == Female {
		sexConst = -161
		lbmFactor = 0.75
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*p.Age + sexConst
	tdee := bmr * tdeeMultipliers[p.Activity]
	calories := tdee * calorieMultipliers[p.Goal][p.Activity]
	lbm := weightKg * lbmFactor

	g := planner.Goals{
		Calories: math.Round(calories),
		Protein:  math.Round(proteinTable.lookup(p.Sex, p.Goal, p.Activity) * lbm),
		Carbs:    math.Round(carbsTable.lookup(p.Sex, p.Goal, p.Activity) * lbm),
		Fat:      math.Round(fatTable.lookup(p.Sex, p.Goal, p.Activity) * lbm),
	}
	b := Breakdown{
		HeightCm: heightCm,
		WeightKg: weightKg,
		LBMKg:    lbm,
		BMR:      bmr,
		TDEE:     tdee,
	}
	return g, b, nil
}
