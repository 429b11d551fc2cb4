package planner

import (
	"sort"

	"dining-planner/internal/catalog"
)

// Combo is a candidate selection of distinct items for one meal, drawn from
// a single campus.
type Combo struct {
	Items  []catalog.PlanItem
	Totals catalog.Nutrition
	Score  float64
	Campus catalog.Campus
}

func (c Combo) has(name string) bool {
	for _, it := range c.Items {
		if it.Name == name {
			return true
		}
	}
	return false
}

// BuildCombos runs a beam search over combinations of up to maxItems items
// with distinct names, scoring each by MacroDistance to goal. Every step
// expands each beam entry by every eligible item, stable-sorts the
// expansions by score and keeps the best beamWidth. The search stops early
// when a step yields no expansions. The result is ordered best first.
//
// All items must come from campus.
func BuildCombos(items []catalog.PlanItem, goal Goals, campus catalog.Campus, maxItems, beamWidth int) []Combo {
	if len(items) == 0 || maxItems < 1 || beamWidth < 1 {
		return nil
	}

	beam := []Combo{{Campus: campus}}
	for step := 0; step < maxItems; step++ {
		next := make([]Combo, 0, len(beam)*len(items))
		for _, c := range beam {
			for _, it := range items {
				if c.has(it.Name) {
					continue
				}
				totals := c.Totals.Add(it.Nutrition)

				combo := Combo{
					Items:  make([]catalog.PlanItem, len(c.Items)+1),
					Totals: totals,
					Score:  MacroDistance(totals, goal),
					Campus: campus,
				}
				copy(combo.Items, c.Items)
				combo.Items[len(c.Items)] = it
				next = append(next, combo)
			}
		}
		if len(next) == 0 {
			break
		}

		sortCombos(next)
		if len(next) > beamWidth {
			next = next[:beamWidth]
		}
		beam = next
	}

	out := make([]Combo, 0, len(beam))
	for _, c := range beam {
		if len(c.Items) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// sortCombos orders combos by ascending score. Equal scores keep their
// relative order.
func sortCombos(combos []Combo) {
	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Score < combos[j].Score
	})
}

// topK returns the k best combos of the pooled candidates.
func topK(combos []Combo, k int) []Combo {
	sortCombos(combos)
	if len(combos) > k {
		combos = combos[:k]
	}
	return combos
}
