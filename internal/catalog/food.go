package catalog

import (
	"fmt"
	"strings"
)

// Campus identifies a dining hall.
type Campus string

const (
	CampusLivingston Campus = "livingston"
	CampusAtrium     Campus = "atrium"
)

// Campuses lists every known campus in canonical order.
var Campuses = []Campus{CampusLivingston, CampusAtrium}

// ParseCampus matches raw against the known campuses ignoring case and
// surrounding whitespace.
func ParseCampus(raw string) (Campus, bool) {
	switch Campus(strings.ToLower(strings.TrimSpace(raw))) {
	case CampusLivingston:
		return CampusLivingston, true
	case CampusAtrium:
		return CampusAtrium, true
	}
	return "", false
}

// Meal is one of the three daily meal slots.
type Meal string

const (
	Breakfast Meal = "Breakfast"
	Lunch     Meal = "Lunch"
	Dinner    Meal = "Dinner"
)

// Meals lists the slots in serving order.
var Meals = []Meal{Breakfast, Lunch, Dinner}

// ParseMeal matches raw against the meal slots ignoring case and surrounding
// whitespace.
func ParseMeal(raw string) (Meal, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "breakfast":
		return Breakfast, true
	case "lunch":
		return Lunch, true
	case "dinner":
		return Dinner, true
	}
	return "", false
}

// NutritionInfo is the parsed content of a nutrition label. Every numeric
// field is optional because labels are frequently incomplete.
type NutritionInfo struct {
	ServingSize   string   `json:"servingSize,omitempty"`
	Calories      *float64 `json:"calories,omitempty"`
	TotalFatG     *float64 `json:"totalFat_g,omitempty"`
	SatFatG       *float64 `json:"satFat_g,omitempty"`
	CholesterolMg *float64 `json:"cholesterol_mg,omitempty"`
	SodiumMg      *float64 `json:"sodium_mg,omitempty"`
	TotalCarbG    *float64 `json:"totalCarb_g,omitempty"`
	DietaryFiberG *float64 `json:"dietaryFiber_g,omitempty"`
	ProteinG      *float64 `json:"protein_g,omitempty"`
	Ingredients   string   `json:"ingredients,omitempty"`
}

// FoodItem is a raw scraped menu entry. Campus and Meal are kept as plain
// strings since the catalog may come from sources that spell them loosely.
type FoodItem struct {
	Campus      string         `json:"campus"`
	Meal        string         `json:"meal"`
	Section     string         `json:"section,omitempty"`
	Name        string         `json:"foodname"`
	Link        string         `json:"link"`
	Date        string         `json:"date"`
	PortionSize string         `json:"portionSize,omitempty"`
	Nutrition   *NutritionInfo `json:"nutrition,omitempty"`
}

// Key returns the dedup identity of the item.
func (f FoodItem) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", f.Campus, f.Date, f.Meal, f.Name, f.Link)
}

// Dedupe drops repeated items, keeping the first occurrence of each key.
func Dedupe(items []FoodItem) []FoodItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]FoodItem, 0, len(items))
	for _, it := range items {
		key := it.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Float returns a pointer to v, for building NutritionInfo literals.
func Float(v float64) *float64 {
	return &v
}
