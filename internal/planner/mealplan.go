package planner

import "dining-planner/internal/catalog"

// GeneratedPlan is the chosen items for each meal of the day. An empty plan
// has all three meals empty and signals that no plan could be built.
type GeneratedPlan struct {
	Breakfast []catalog.PlanItem `json:"breakfast"`
	Lunch     []catalog.PlanItem `json:"lunch"`
	Dinner    []catalog.PlanItem `json:"dinner"`
}

// EmptyPlan returns a plan whose meals are empty, non-nil slices so it
// serializes as three empty arrays.
func EmptyPlan() GeneratedPlan {
	return GeneratedPlan{
		Breakfast: []catalog.PlanItem{},
		Lunch:     []catalog.PlanItem{},
		Dinner:    []catalog.PlanItem{},
	}
}

// IsEmpty reports whether the plan has no items at all.
func (p GeneratedPlan) IsEmpty() bool {
	return len(p.Breakfast) == 0 && len(p.Lunch) == 0 && len(p.Dinner) == 0
}

// Meal returns the items chosen for meal.
func (p GeneratedPlan) Meal(meal catalog.Meal) []catalog.PlanItem {
	switch meal {
	case catalog.Breakfast:
		return p.Breakfast
	case catalog.Lunch:
		return p.Lunch
	case catalog.Dinner:
		return p.Dinner
	}
	return nil
}

// MealTotals sums the nutrition of the items chosen for meal.
func (p GeneratedPlan) MealTotals(meal catalog.Meal) catalog.Nutrition {
	var total catalog.Nutrition
	for _, it := range p.Meal(meal) {
		total = total.Add(it.Nutrition)
	}
	return total
}

// Totals sums the nutrition of the whole day.
func (p GeneratedPlan) Totals() catalog.Nutrition {
	var total catalog.Nutrition
	for _, meal := range catalog.Meals {
		total = total.Add(p.MealTotals(meal))
	}
	return total
}

// Result is a generated plan together with how it was chosen. Campuses is
// only meaningful when the plan is not empty.
type Result struct {
	Plan     GeneratedPlan     `json:"plan"`
	Score    float64           `json:"score"`
	Campuses [3]catalog.Campus `json:"campuses"`
}

func cloneItems(items []catalog.PlanItem) []catalog.PlanItem {
	out := make([]catalog.PlanItem, len(items))
	copy(out, items)
	return out
}
