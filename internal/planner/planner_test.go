package planner

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dining-planner/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name string, cal, protein, carbs, fat float64) catalog.PlanItem {
	return catalog.PlanItem{Name: name, Nutrition: catalog.Nutrition{Calories: cal, ProteinG: protein, Carbs: carbs, Fat: fat}}
}

func names(items []catalog.PlanItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

// richCatalog stocks every meal at both campuses. Atrium item names carry an
// "Atrium " prefix so tests can tell the campuses apart.
func richCatalog() catalog.Catalog {
	return catalog.Catalog{
		{Campus: catalog.CampusLivingston, Meal: catalog.Breakfast}: {
			item("Scrambled Eggs", 180, 13, 2, 13),
			item("Oatmeal", 150, 5, 27, 3),
			item("Greek Yogurt", 130, 17, 9, 2),
			item("Turkey Sausage", 140, 14, 1, 9),
			item("Whole Wheat Toast", 140, 6, 24, 2),
			item("Banana", 105, 1, 27, 0),
			item("Banana", 120, 1, 31, 0),
			item("Egg White Omelet", 120, 20, 3, 3),
		},
		{Campus: catalog.CampusLivingston, Meal: catalog.Lunch}: {
			item("Grilled Chicken Breast", 280, 45, 0, 8),
			item("Brown Rice", 220, 5, 46, 2),
			item("Steamed Broccoli", 55, 4, 11, 1),
			item("Turkey Wrap", 380, 28, 40, 12),
			item("Lentil Soup", 230, 14, 36, 3),
			item("Caesar Salad", 190, 7, 10, 14),
		},
		{Campus: catalog.CampusLivingston, Meal: catalog.Dinner}: {
			item("Baked Salmon", 320, 34, 0, 19),
			item("Sirloin Steak", 300, 40, 0, 14),
			item("Roasted Potatoes", 210, 4, 36, 6),
			item("Whole Wheat Pasta", 280, 11, 56, 2),
			item("Quinoa", 220, 8, 39, 4),
			item("Green Beans", 45, 2, 8, 0),
		},
		{Campus: catalog.CampusAtrium, Meal: catalog.Breakfast}: {
			item("Atrium Pancakes", 350, 8, 60, 9),
			item("Atrium Cottage Cheese", 180, 24, 8, 5),
			item("Atrium Fruit Cup", 90, 1, 22, 0),
			item("Atrium Breakfast Burrito", 420, 22, 40, 18),
		},
		{Campus: catalog.CampusAtrium, Meal: catalog.Lunch}: {
			item("Atrium Turkey Burger", 450, 32, 35, 20),
			item("Atrium Garden Salad", 120, 4, 14, 6),
			item("Atrium Chicken Noodle Soup", 160, 12, 18, 4),
			item("Atrium Sweet Potato Fries", 300, 3, 42, 13),
		},
		{Campus: catalog.CampusAtrium, Meal: catalog.Dinner}: {
			item("Atrium Beef Stir Fry", 480, 36, 30, 22),
			item("Atrium Jasmine Rice", 200, 4, 44, 0),
			item("Atrium Tofu Curry", 330, 18, 24, 18),
			item("Atrium Steamed Vegetables", 70, 3, 13, 1),
		},
	}
}

var dayGoals = Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 60}

func TestMacroDistance(t *testing.T) {
	got := MacroDistance(catalog.Nutrition{Calories: 510, ProteinG: 38, Carbs: 58, Fat: 20}, Goals{Calories: 500, Protein: 40, Carbs: 60, Fat: 18})
	// 10*1 + 2*4 + 2*1.5 + 2*1.5
	assert.InDelta(t, 24.0, got, 1e-9)
	assert.Zero(t, MacroDistance(catalog.Nutrition{}, Goals{}))
}

func TestMealGoal(t *testing.T) {
	b := MealGoal(dayGoals, catalog.Breakfast)
	assert.InDelta(t, 560, b.Calories, 1e-9)
	assert.InDelta(t, 37.5, b.Protein, 1e-9)
	assert.InDelta(t, 60, b.Carbs, 1e-9)
	assert.InDelta(t, 16.8, b.Fat, 1e-9)

	l := MealGoal(dayGoals, catalog.Lunch)
	assert.InDelta(t, 760, l.Calories, 1e-9)
	assert.InDelta(t, 60, l.Protein, 1e-9)

	d := MealGoal(dayGoals, catalog.Dinner)
	assert.InDelta(t, 680, d.Calories, 1e-9)
	assert.InDelta(t, 21.6, d.Fat, 1e-9)
}

func TestImbalancePenalty(t *testing.T) {
	t.Run("NoCalories", func(t *testing.T) {
		assert.Equal(t, 1e9, ImbalancePenalty(0, 0, 0, 2000))
	})

	t.Run("Balanced", func(t *testing.T) {
		assert.InDelta(t, 0, ImbalancePenalty(500, 800, 700, 2000), 1e-9)
	})

	t.Run("SmallBreakfast", func(t *testing.T) {
		// Breakfast share 200/1700 is below 20% and under the 250 kcal floor.
		want := (0.20-200.0/1700)*800 + 50*2
		assert.InDelta(t, want, ImbalancePenalty(200, 750, 750, 1700), 1e-9)
	})

	t.Run("TotalDrift", func(t *testing.T) {
		assert.InDelta(t, 150, ImbalancePenalty(500, 800, 700, 3000), 1e-9)
	})
}

func TestSwitchPenalty(t *testing.T) {
	l, a := catalog.CampusLivingston, catalog.CampusAtrium
	assert.Zero(t, SwitchPenalty(LocationAny, l, l, l))
	assert.Equal(t, 20.0, SwitchPenalty(LocationAny, l, a, a))
	assert.Equal(t, 40.0, SwitchPenalty(LocationAny, l, a, l))
	assert.Zero(t, SwitchPenalty(LocationAtrium, l, a, l))
}

func TestBuildCombos(t *testing.T) {
	goal := Goals{Calories: 500, Protein: 30, Carbs: 50, Fat: 15}

	t.Run("EmptyPool", func(t *testing.T) {
		assert.Empty(t, BuildCombos(nil, goal, catalog.CampusAtrium, 3, 250))
	})

	t.Run("SingleStepIsStableSorted", func(t *testing.T) {
		items := []catalog.PlanItem{
			item("far", 100, 0, 0, 0),
			item("near", 450, 30, 50, 15),
			item("tie-a", 400, 30, 50, 15),
			item("tie-b", 600, 30, 50, 15),
		}
		combos := BuildCombos(items, goal, catalog.CampusAtrium, 1, 250)
		require.Len(t, combos, 4)

		got := make([]string, len(combos))
		for i, c := range combos {
			got[i] = c.Items[0].Name
		}
		assert.Equal(t, []string{"near", "tie-a", "tie-b", "far"}, got)
		assert.InDelta(t, 50, combos[0].Score, 1e-9)
	})

	t.Run("DistinctNamesAndSortedOutput", func(t *testing.T) {
		items := richCatalog().Items(catalog.CampusLivingston, catalog.Breakfast)
		combos := BuildCombos(items, goal, catalog.CampusLivingston, 3, 250)
		require.NotEmpty(t, combos)
		assert.LessOrEqual(t, len(combos), 250)

		for i, c := range combos {
			assert.Len(t, c.Items, 3)
			assert.Equal(t, catalog.CampusLivingston, c.Campus)

			seen := map[string]bool{}
			var total catalog.Nutrition
			for _, it := range c.Items {
				assert.False(t, seen[it.Name], "duplicate name %q in combo", it.Name)
				seen[it.Name] = true
				total = total.Add(it.Nutrition)
			}
			assert.Equal(t, total, c.Totals)
			assert.InDelta(t, MacroDistance(total, goal), c.Score, 1e-9)
			if i > 0 {
				assert.LessOrEqual(t, combos[i-1].Score, c.Score)
			}
		}
	})

	t.Run("BeamWidthTruncates", func(t *testing.T) {
		items := richCatalog().Items(catalog.CampusLivingston, catalog.Lunch)
		assert.Len(t, BuildCombos(items, goal, catalog.CampusLivingston, 3, 7), 7)
	})

	t.Run("StopsWhenNoItemCanBeAdded", func(t *testing.T) {
		items := []catalog.PlanItem{
			item("Soup", 200, 10, 20, 5),
			item("Soup", 250, 12, 25, 6),
			item("Bread", 150, 5, 30, 2),
		}
		combos := BuildCombos(items, goal, catalog.CampusAtrium, 3, 250)
		require.Len(t, combos, 4)
		for _, c := range combos {
			assert.Len(t, c.Items, 2)
			assert.ElementsMatch(t, []string{"Soup", "Bread"}, names(c.Items))
		}
	})
}

func TestAssemble(t *testing.T) {
	combo := func(name string, cal float64, campus catalog.Campus) Combo {
		it := item(name, cal, 0, 0, 0)
		return Combo{Items: []catalog.PlanItem{it}, Totals: it.Nutrition, Campus: campus}
	}
	goals := Goals{Calories: 2000}

	t.Run("MissingMeal", func(t *testing.T) {
		_, ok := Assemble(Candidates{
			Breakfast: []Combo{combo("b", 500, catalog.CampusAtrium)},
			Lunch:     []Combo{combo("l", 800, catalog.CampusAtrium)},
		}, goals, LocationAny)
		assert.False(t, ok)
	})

	t.Run("PrefersSingleCampus", func(t *testing.T) {
		sel, ok := Assemble(Candidates{
			Breakfast: []Combo{combo("b", 500, catalog.CampusLivingston)},
			Lunch: []Combo{
				combo("l-atrium", 800, catalog.CampusAtrium),
				combo("l-livi", 805, catalog.CampusLivingston),
			},
			Dinner: []Combo{combo("d", 700, catalog.CampusLivingston)},
		}, goals, LocationAny)
		require.True(t, ok)
		assert.Equal(t, "l-livi", sel.Lunch.Items[0].Name)
		assert.InDelta(t, 5+5*0.15, sel.Score, 1e-9)
	})

	t.Run("FirstTripleWinsTies", func(t *testing.T) {
		sel, ok := Assemble(Candidates{
			Breakfast: []Combo{combo("b1", 500, catalog.CampusAtrium), combo("b2", 500, catalog.CampusAtrium)},
			Lunch:     []Combo{combo("l", 800, catalog.CampusAtrium)},
			Dinner:    []Combo{combo("d", 700, catalog.CampusAtrium)},
		}, goals, LocationAtrium)
		require.True(t, ok)
		assert.Equal(t, "b1", sel.Breakfast.Items[0].Name)
		assert.Zero(t, sel.Score)
	})
}

func TestPlan(t *testing.T) {
	p := New(DefaultOptions(), nil, nil)

	t.Run("RichCatalogAnyLocation", func(t *testing.T) {
		res := p.Plan(richCatalog(), LocationAny, dayGoals)
		require.False(t, res.Plan.IsEmpty())

		assert.Equal(t, []string{"Scrambled Eggs", "Oatmeal", "Whole Wheat Toast"}, names(res.Plan.Breakfast))
		assert.Equal(t, []string{"Turkey Wrap", "Grilled Chicken Breast", "Brown Rice"}, names(res.Plan.Lunch))
		assert.Equal(t, []string{"Baked Salmon", "Whole Wheat Pasta", "Green Beans"}, names(res.Plan.Dinner))
		assert.InDelta(t, 15.75, res.Score, 1e-6)

		total := res.Plan.Totals()
		assert.InDelta(t, 2000, total.Calories, 2000*0.15)

		bands := map[catalog.Meal][2]float64{
			catalog.Breakfast: {0.20, 0.35},
			catalog.Lunch:     {0.30, 0.45},
			catalog.Dinner:    {0.25, 0.45},
		}
		for meal, band := range bands {
			share := res.Plan.MealTotals(meal).Calories / total.Calories
			assert.GreaterOrEqual(t, share, band[0], "%s share", meal)
			assert.LessOrEqual(t, share, band[1], "%s share", meal)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first := p.Plan(richCatalog(), LocationAny, dayGoals)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, p.Plan(richCatalog(), LocationAny, dayGoals))
		}
	})

	t.Run("SingleCampusConstraint", func(t *testing.T) {
		res := p.Plan(richCatalog(), LocationAtrium, dayGoals)
		require.False(t, res.Plan.IsEmpty())
		for _, meal := range catalog.Meals {
			for _, it := range res.Plan.Meal(meal) {
				assert.True(t, strings.HasPrefix(it.Name, "Atrium "), "%s served %q", meal, it.Name)
			}
		}
		assert.Equal(t, [3]catalog.Campus{catalog.CampusAtrium, catalog.CampusAtrium, catalog.CampusAtrium}, res.Campuses)
	})

	t.Run("MealsNeverMixCampuses", func(t *testing.T) {
		res := p.Plan(richCatalog(), LocationAny, Goals{Calories: 2400, Protein: 120, Carbs: 260, Fat: 80})
		require.False(t, res.Plan.IsEmpty())
		for i, meal := range catalog.Meals {
			atrium := res.Campuses[i] == catalog.CampusAtrium
			for _, it := range res.Plan.Meal(meal) {
				assert.Equal(t, atrium, strings.HasPrefix(it.Name, "Atrium "), "%s served %q", meal, it.Name)
			}
		}
	})

	t.Run("DistinctNamesPerMeal", func(t *testing.T) {
		res := p.Plan(richCatalog(), LocationLivingston, dayGoals)
		for _, meal := range catalog.Meals {
			seen := map[string]bool{}
			for _, it := range res.Plan.Meal(meal) {
				assert.False(t, seen[it.Name], "duplicate %q at %s", it.Name, meal)
				seen[it.Name] = true
			}
		}
	})

	t.Run("MissingMealsGiveEmptyPlan", func(t *testing.T) {
		cat := catalog.Catalog{
			{Campus: catalog.CampusLivingston, Meal: catalog.Breakfast}: {item("Bagel Sandwich", 300, 20, 30, 10)},
		}
		res := p.Plan(cat, LocationLivingston, dayGoals)
		assert.True(t, res.Plan.IsEmpty())

		data, err := json.Marshal(res.Plan)
		require.NoError(t, err)
		assert.JSONEq(t, `{"breakfast":[],"lunch":[],"dinner":[]}`, string(data))
	})

	t.Run("OtherCampusDoesNotFillGaps", func(t *testing.T) {
		cat := richCatalog()
		delete(cat, catalog.Slot{Campus: catalog.CampusAtrium, Meal: catalog.Dinner})
		assert.True(t, p.Plan(cat, LocationAtrium, dayGoals).Plan.IsEmpty())
		assert.False(t, p.Plan(cat, LocationAny, dayGoals).Plan.IsEmpty())
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		for _, loc := range []Location{LocationAny, LocationLivingston, LocationAtrium} {
			assert.True(t, p.Plan(catalog.Catalog{}, loc, dayGoals).Plan.IsEmpty())
		}
	})
}

func TestPlanMoreSearchIsNeverWorse(t *testing.T) {
	cat := richCatalog()
	narrow := New(Options{MaxItems: 3, BeamWidth: 5, TopK: 5}, nil, nil).Plan(cat, LocationLivingston, dayGoals)
	wide := New(Options{MaxItems: 3, BeamWidth: 100000, TopK: 100000}, nil, nil).Plan(cat, LocationLivingston, dayGoals)

	require.False(t, narrow.Plan.IsEmpty())
	require.False(t, wide.Plan.IsEmpty())
	assert.LessOrEqual(t, wide.Score, narrow.Score)
	assert.InDelta(t, 12.0, wide.Score, 1e-6)
	assert.Equal(t, []string{"Scrambled Eggs", "Oatmeal", "Banana"}, names(wide.Plan.Breakfast))
}

type sliceSource []catalog.FoodItem

func (s sliceSource) Snapshot(context.Context) ([]catalog.FoodItem, error) {
	return s, nil
}

func TestGeneratePlanSkipsIncompleteItems(t *testing.T) {
	full := func(campus, meal, name string, cal, p, c, f float64) catalog.FoodItem {
		return catalog.FoodItem{Campus: campus, Meal: meal, Name: name, Nutrition: &catalog.NutritionInfo{
			Calories: catalog.Float(cal), ProteinG: catalog.Float(p), TotalCarbG: catalog.Float(c), TotalFatG: catalog.Float(f),
		}}
	}
	src := sliceSource{
		full("Atrium", "Breakfast", "Omelet", 400, 30, 10, 25),
		full("atrium", "breakfast", "Toast", 150, 5, 28, 2),
		{Campus: "atrium", Meal: "Breakfast", Name: "Mystery Muffin", Nutrition: &catalog.NutritionInfo{Calories: catalog.Float(420)}},
		full("atrium", "Lunch", "Chicken Bowl", 700, 50, 70, 20),
		{Campus: "atrium", Meal: "Lunch", Name: "Label Missing"},
		full("atrium", "Dinner", "Pasta", 650, 25, 90, 18),
		full("atrium", "Dinner", "Broken", math.NaN(), 1, 1, 1),
	}

	res, err := New(DefaultOptions(), nil, nil).GeneratePlan(context.Background(), src, LocationAtrium, dayGoals)
	require.NoError(t, err)
	require.False(t, res.Plan.IsEmpty())

	for _, meal := range catalog.Meals {
		for _, it := range res.Plan.Meal(meal) {
			assert.NotContains(t, []string{"Mystery Muffin", "Label Missing", "Broken"}, it.Name)
			for _, v := range []float64{it.Nutrition.Calories, it.Nutrition.ProteinG, it.Nutrition.Carbs, it.Nutrition.Fat} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		}
	}
	assert.ElementsMatch(t, []string{"Omelet", "Toast"}, names(res.Plan.Breakfast))
	assert.Equal(t, []string{"Chicken Bowl"}, names(res.Plan.Lunch))
	assert.Equal(t, []string{"Pasta"}, names(res.Plan.Dinner))
}

func TestGeneratePlanFromFileWithMalformedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "food.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"campus": "livingston", "meal": "Breakfast", "foodname": "Eggs", "link": "l1", "date": "2026-10-16",
   "nutrition": {"calories": 450, "protein_g": 35, "totalCarb_g": 40, "totalFat_g": 15}},
  {"campus": "livingston", "meal": "Lunch", "foodname": "Chicken Bowl", "link": "l2", "date": "2026-10-16",
   "nutrition": {"calories": 750, "protein_g": 55, "totalCarb_g": 70, "totalFat_g": 22}},
  {"campus": "livingston", "meal": "Lunch", "foodname": "Soup of the Day", "link": "l3", "date": "2026-10-16",
   "nutrition": {"calories": "n/a", "protein_g": 8, "totalCarb_g": 20, "totalFat_g": 6}},
  {"campus": "livingston", "meal": "Dinner", "foodname": "Salmon", "link": "l4", "date": "2026-10-16",
   "nutrition": {"calories": 700, "protein_g": 50, "totalCarb_g": 60, "totalFat_g": 25}}
]`), 0644))

	res, err := New(DefaultOptions(), nil, nil).GeneratePlan(context.Background(), catalog.FileSource{Path: path}, LocationLivingston, dayGoals)
	require.NoError(t, err)
	require.False(t, res.Plan.IsEmpty())
	assert.Equal(t, []string{"Eggs"}, names(res.Plan.Breakfast))
	assert.Equal(t, []string{"Chicken Bowl"}, names(res.Plan.Lunch))
	assert.Equal(t, []string{"Salmon"}, names(res.Plan.Dinner))
}

func TestLocation(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		for raw, want := range map[string]Location{
			"any":        LocationAny,
			" ANY ":      LocationAny,
			"Livingston": LocationLivingston,
			"atrium\n":   LocationAtrium,
		} {
			got, err := ParseLocation(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, got, raw)
		}
		_, err := ParseLocation("busch")
		assert.ErrorIs(t, err, ErrUnknownLocation)
	})

	t.Run("Resolve", func(t *testing.T) {
		tests := []struct {
			name      string
			selection []string
			want      Location
		}{
			{"Empty", nil, LocationAny},
			{"OnlyLivingston", []string{" Livingston "}, LocationLivingston},
			{"RepeatedAtrium", []string{"atrium", "ATRIUM"}, LocationAtrium},
			{"Both", []string{"atrium", "livingston"}, LocationAny},
			{"Unknown", []string{"busch"}, LocationAny},
			{"UnknownIgnored", []string{"busch", "atrium", ""}, LocationAtrium},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, ResolveLocation(tc.selection))
			})
		}
	})

	t.Run("Campuses", func(t *testing.T) {
		assert.Equal(t, []catalog.Campus{catalog.CampusAtrium}, LocationAtrium.Campuses())
		assert.Equal(t, []catalog.Campus{catalog.CampusLivingston, catalog.CampusAtrium}, LocationAny.Campuses())
	})
}
