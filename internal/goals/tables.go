package goals

// Activity coefficients applied to BMR, indexed by Activity.
var tdeeMultipliers = [activityCount]float64{1.2, 1.375, 1.55, 1.725}

// Calorie goal coefficients applied to TDEE, indexed by Goal then Activity.
var calorieMultipliers = [goalCount][activityCount]float64{
	LoseWeight:        {0.77, 0.825, 0.85, 0.875},
	GainMuscle:        {1.0, 1.075, 1.125, 1.15},
	BodyRecomposition: {0.95, 0.95, 0.975, 1.0},
	MaintainWeight:    {1.0, 1.0, 1.0, 1.0},
}

// macroTable holds grams per kg of lean body mass, indexed by Sex, Goal and
// Activity.
type macroTable [sexCount][goalCount][activityCount]float64

var proteinTable = macroTable{
	Male: {
		LoseWeight:        {0.8, 0.85, 0.9, 0.975},
		GainMuscle:        {0.6, 0.75, 0.85, 0.95},
		BodyRecomposition: {0.9, 0.95, 1.0, 1.075},
		MaintainWeight:    {0.6, 0.65, 0.7, 0.77},
	},
	Female: {
		LoseWeight:        {0.7, 0.75, 0.8, 0.875},
		GainMuscle:        {0.5, 0.7, 0.8, 0.9},
		BodyRecomposition: {0.8, 0.85, 0.9, 0.975},
		MaintainWeight:    {0.5, 0.575, 0.6, 0.675},
	},
}

var carbsTable = macroTable{
	Male: {
		LoseWeight:        {0.6, 0.85, 1.15, 1.45},
		GainMuscle:        {1.1, 1.75, 2.25, 2.75},
		BodyRecomposition: {0.8, 1.1, 1.35, 1.65},
		MaintainWeight:    {1.1, 1.3, 1.55, 1.75},
	},
	Female: {
		LoseWeight:        {0.5, 0.7, 0.95, 1.25},
		GainMuscle:        {1.0, 1.4, 1.85, 2.35},
		BodyRecomposition: {0.7, 0.9, 1.15, 1.45},
		MaintainWeight:    {1.0, 1.1, 1.35, 1.55},
	},
}

var fatTable = macroTable{
	Male: {
		LoseWeight:        {0.6, 0.85, 1.15, 1.45},
		GainMuscle:        {1.1, 1.75, 2.25, 2.75},
		BodyRecomposition: {0.8, 1.1, 1.35, 1.65},
		MaintainWeight:    {0.425, 0.4, 0.375, 0.35},
	},
	Female: {
		LoseWeight:        {0.5, 0.7, 0.95, 1.25},
		GainMuscle:        {1.0, 1.4, 1.85, 2.35},
		BodyRecomposition: {0.7, 0.9, 1.15, 1.45},
		MaintainWeight:    {0.425, 0.4, 0.375, 0.35},
	},
}

func (t *macroTable) lookup(s Sex, g Goal, a Activity) float64 {
	return t[s][g][a]
}
