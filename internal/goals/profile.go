// Package goals translates a biometric profile into daily calorie and macro
// targets.
package goals

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is returned for profiles that cannot be translated.
var ErrInvalidProfile = errors.New("invalid profile")

// Sex selects the BMR constant and the macro tables.
type Sex int

const (
	Male Sex = iota
	Female
	sexCount
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// ParseSex accepts male/female and their initials.
func ParseSex(raw string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return 0, fmt.Errorf("%w: unknown sex %q", ErrInvalidProfile, raw)
}

// Activity is one of four exercise tiers.
type Activity int

const (
	Sedentary Activity = iota
	Light
	Moderate
	Heavy
	activityCount
)

var activityNames = [activityCount]string{
	Sedentary: "Sedentary (little or no exercise)",
	Light:     "Light (exercise 1-3 days/week)",
	Moderate:  "Moderate (exercise 3-5 days/week)",
	Heavy:     "Heavy (exercise 6-7 days/week)",
}

func (a Activity) String() string {
	if a < 0 || a >= activityCount {
		return fmt.Sprintf("Activity(%d)", int(a))
	}
	return activityNames[a]
}

// ParseActivity matches the tier by its leading word, so both "moderate"
// and "Moderate (exercise 3-5 days/week)" are accepted.
func ParseActivity(raw string) (Activity, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(s, "sedentary"):
		return Sedentary, nil
	case strings.HasPrefix(s, "light"):
		return Light, nil
	case strings.HasPrefix(s, "moderate"):
		return Moderate, nil
	case strings.HasPrefix(s, "heavy"):
		return Heavy, nil
	}
	return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, raw)
}

// Goal is the dietary objective.
type Goal int

const (
	MaintainWeight Goal = iota
	LoseWeight
	GainMuscle
	BodyRecomposition
	goalCount
)

var goalNames = [goalCount]string{
	MaintainWeight:    "Maintain Weight",
	LoseWeight:        "Lose Weight",
	GainMuscle:        "Gain Muscle",
	BodyRecomposition: "Body Recomposition",
}

func (g Goal) String() string {
	if g < 0 || g >= goalCount {
		return fmt.Sprintf("Goal(%d)", int(g))
	}
	return goalNames[g]
}

// ParseGoal matches a goal name case-insensitively. Short forms such as
// "lose", "gain", "recomp" and "maintain" are accepted, and an empty string
// means Maintain Weight.
func ParseGoal(raw string) (Goal, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return MaintainWeight, nil
	case strings.HasPrefix(s, "lose"):
		return LoseWeight, nil
	case strings.HasPrefix(s, "gain"):
		return GainMuscle, nil
	case strings.HasPrefix(s, "body") || strings.HasPrefix(s, "recomp"):
		return BodyRecomposition, nil
	case strings.HasPrefix(s, "maintain"):
		return MaintainWeight, nil
	}
	return 0, fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, raw)
}

// Profile is the biometric input of the translator. Height is in inches and
// weight in pounds.
type Profile struct {
	Sex      Sex
	Age      float64
	HeightIn float64
	WeightLb float64
	Activity Activity
	Goal     Goal
}

// Validate rejects non-positive measurements and out-of-range enums.
func (p Profile) Validate() error {
	switch {
	case p.Sex < 0 || p.Sex >= sexCount:
		return fmt.Errorf("%w: sex out of range", ErrInvalidProfile)
	case p.Activity < 0 || p.Activity >= activityCount:
		return fmt.Errorf("%w: activity out of range", ErrInvalidProfile)
	case p.Goal < 0 || p.Goal >= goalCount:
		return fmt.Errorf("%w: goal out of range", ErrInvalidProfile)
	case !(p.Age > 0):
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	case !(p.HeightIn > 0):
		return fmt.Errorf("%w: height must be positive", ErrInvalidProfile)
	case !(p.WeightLb > 0):
		return fmt.Errorf("%w: weight must be positive", ErrInvalidProfile)
	}
	return nil
}
