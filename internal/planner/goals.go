package planner

import (
	"math"

	"dining-planner/internal/catalog"
)

// Goals are the four nutrient targets of a planning request.
type Goals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Scale multiplies each target by the matching fraction in f.
func (g Goals) Scale(f Goals) Goals {
	return Goals{
		Calories: g.Calories * f.Calories,
		Protein:  g.Protein * f.Protein,
		Carbs:    g.Carbs * f.Carbs,
		Fat:      g.Fat * f.Fat,
	}
}

// Distance weights. Protein accuracy matters most.
const (
	weightCalories = 1.0
	weightProtein  = 4.0
	weightCarbs    = 1.5
	weightFat      = 1.5
)

// MacroDistance is the weighted L1 distance between total and goals. Lower
// is better.
func MacroDistance(total catalog.Nutrition, goals Goals) float64 {
	return weightCalories*math.Abs(total.Calories-goals.Calories) +
		weightProtein*math.Abs(total.ProteinG-goals.Protein) +
		weightCarbs*math.Abs(total.Carbs-goals.Carbs) +
		weightFat*math.Abs(total.Fat-goals.Fat)
}

// mealSplits is the share of each daily target assigned to a meal.
var mealSplits = map[catalog.Meal]Goals{
	catalog.Breakfast: {Calories: 0.28, Protein: 0.25, Carbs: 0.30, Fat: 0.28},
	catalog.Lunch:     {Calories: 0.38, Protein: 0.40, Carbs: 0.35, Fat: 0.36},
	catalog.Dinner:    {Calories: 0.34, Protein: 0.35, Carbs: 0.35, Fat: 0.36},
}

// MealGoal returns the sub-goal a single meal is optimized toward.
func MealGoal(goals Goals, meal catalog.Meal) Goals {
	return goals.Scale(mealSplits[meal])
}
