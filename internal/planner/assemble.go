package planner

import (
	"math"

	"dining-planner/internal/catalog"
)

// switchPenalty is added for each pair of consecutive meals served at
// different campuses when the location is unconstrained.
const switchPenalty = 20

// calorieBand is the preferred share of daily calories for a meal, and the
// minimum calories below which the meal is penalized.
type calorieBand struct {
	lo, hi float64
	floor  float64
}

var (
	breakfastBand = calorieBand{lo: 0.20, hi: 0.35, floor: 250}
	lunchBand     = calorieBand{lo: 0.30, hi: 0.45, floor: 400}
	dinnerBand    = calorieBand{lo: 0.25, hi: 0.45, floor: 400}
)

const (
	fractionPenaltyRate = 800
	floorPenaltyRate    = 2
	totalPenaltyRate    = 0.15
	noCaloriesPenalty   = 1e9
)

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func (b calorieBand) penalty(calories, sum float64) float64 {
	frac := calories / sum
	p := math.Abs(frac-clamp(frac, b.lo, b.hi)) * fractionPenaltyRate
	if calories < b.floor {
		p += (b.floor - calories) * floorPenaltyRate
	}
	return p
}

// ImbalancePenalty scores how badly the day's calories are spread across
// breakfast, lunch and dinner, plus a mild term for missing the calorie
// goal. A day with no calories at all is effectively rejected.
func ImbalancePenalty(breakfast, lunch, dinner, calorieGoal float64) float64 {
	sum := breakfast + lunch + dinner
	if sum <= 0 {
		return noCaloriesPenalty
	}
	return breakfastBand.penalty(breakfast, sum) +
		lunchBand.penalty(lunch, sum) +
		dinnerBand.penalty(dinner, sum) +
		math.Abs(sum-calorieGoal)*totalPenaltyRate
}

// SwitchPenalty charges each campus change between consecutive meals. It
// only applies when the location is unconstrained.
func SwitchPenalty(loc Location, breakfast, lunch, dinner catalog.Campus) float64 {
	if loc != LocationAny {
		return 0
	}
	var p float64
	if breakfast != lunch {
		p += switchPenalty
	}
	if lunch != dinner {
		p += switchPenalty
	}
	return p
}

// Candidates are the ranked combos available to each meal.
type Candidates struct {
	Breakfast []Combo
	Lunch     []Combo
	Dinner    []Combo
}

// Selection is the chosen combo per meal and the full-day score.
type Selection struct {
	Breakfast Combo
	Lunch     Combo
	Dinner    Combo
	Score     float64
}

// PlanScore is the full-day objective for one choice of combos.
func PlanScore(b, l, d Combo, goals Goals, loc Location) float64 {
	total := b.Totals.Add(l.Totals).Add(d.Totals)
	return MacroDistance(total, goals) +
		ImbalancePenalty(b.Totals.Calories, l.Totals.Calories, d.Totals.Calories, goals.Calories) +
		SwitchPenalty(loc, b.Campus, l.Campus, d.Campus)
}

// Assemble scans every breakfast, lunch and dinner triple and returns the
// lowest scoring one. Ties keep the first triple found. It reports false
// when any meal has no candidates.
func Assemble(c Candidates, goals Goals, loc Location) (Selection, bool) {
	if len(c.Breakfast) == 0 || len(c.Lunch) == 0 || len(c.Dinner) == 0 {
		return Selection{}, false
	}

	best := Selection{Score: math.Inf(1)}
	found := false
	for _, b := range c.Breakfast {
		for _, l := range c.Lunch {
			for _, d := range c.Dinner {
				score := PlanScore(b, l, d, goals, loc)
				if !found || score < best.Score {
					best = Selection{Breakfast: b, Lunch: l, Dinner: d, Score: score}
					found = true
				}
			}
		}
	}
	return best, true
}
