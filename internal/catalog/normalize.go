package catalog

import (
	"math"
	"strings"
)

// Nutrition is the macro quadruple the planner optimizes over.
type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum of n and o.
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		ProteinG: n.ProteinG + o.ProteinG,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

// PlanItem is a food item that passed normalization. All four macros are
// finite.
type PlanItem struct {
	Name      string    `json:"name"`
	Nutrition Nutrition `json:"nutrition"`
}

// Slot addresses one (campus, meal) bucket of the normalized catalog.
type Slot struct {
	Campus Campus
	Meal   Meal
}

// Catalog maps each (campus, meal) bucket to its items in input order.
type Catalog map[Slot][]PlanItem

// Items returns the bucket for campus and meal, or nil.
func (c Catalog) Items(campus Campus, meal Meal) []PlanItem {
	return c[Slot{Campus: campus, Meal: meal}]
}

// Len counts every normalized item.
func (c Catalog) Len() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}

// Normalize validates raw items and groups the survivors by campus and meal.
// Items with an unknown campus or meal, an empty name, or any missing or
// non-finite macro are dropped silently.
func Normalize(items []FoodItem) Catalog {
	out := make(Catalog)
	for _, raw := range items {
		campus, ok := ParseCampus(raw.Campus)
		if !ok {
			continue
		}
		meal, ok := ParseMeal(raw.Meal)
		if !ok {
			continue
		}
		item, ok := NormalizeItem(raw)
		if !ok {
			continue
		}
		slot := Slot{Campus: campus, Meal: meal}
		out[slot] = append(out[slot], item)
	}
	return out
}

// NormalizeItem extracts the name and macro quadruple of a single item.
func NormalizeItem(raw FoodItem) (PlanItem, bool) {
	name := strings.TrimSpace(raw.Name)
	n := raw.Nutrition
	if name == "" || n == nil {
		return PlanItem{}, false
	}

	values := [4]*float64{n.Calories, n.ProteinG, n.TotalCarbG, n.TotalFatG}
	for _, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return PlanItem{}, false
		}
	}

	return PlanItem{
		Name: name,
		Nutrition: Nutrition{
			Calories: *n.Calories,
			ProteinG: *n.ProteinG,
			Carbs:    *n.TotalCarbG,
			Fat:      *n.TotalFatG,
		},
	}, true
}
