package app

import (
	"context"
	"fmt"

	"dining-planner/internal/goals"
	"dining-planner/internal/planner"
)

// PlanRequest asks for a plan against explicit targets.
type PlanRequest struct {
	// UserID, when set, stores a found plan as the user's latest.
	UserID   string
	Location planner.Location
	Goals    planner.Goals
	// CatalogPath selects a food.json snapshot instead of the database.
	CatalogPath string
}

// GeneratePlan plans over the current catalog. An empty plan is returned
// without error when no meal combination is possible; it is never stored.
func (a *App) GeneratePlan(ctx context.Context, req PlanRequest) (planner.Result, error) {
	res, err := a.planner.GeneratePlan(ctx, a.Source(req.CatalogPath), req.Location, req.Goals)
	if err != nil {
		return planner.Result{}, err
	}

	if res.Plan.IsEmpty() {
		a.logger.Info("no plan found", "location", req.Location)
		return res, nil
	}

	if req.UserID != "" {
		stored, err := a.plans.Save(ctx, req.UserID, req.Location, req.Goals, res)
		if err != nil {
			return res, fmt.Errorf("failed to store plan: %w", err)
		}
		a.logger.Debug("plan stored", "user", req.UserID, "plan_id", stored.PlanID)
	}
	return res, nil
}

// ProfilePlan is a plan built from a body profile.
type ProfilePlan struct {
	Goals     planner.Goals
	Breakdown goals.Breakdown
	Location  planner.Location
	Result    planner.Result
}

// PlanForProfile translates a profile into daily targets, resolves the
// campus selection and plans against them.
func (a *App) PlanForProfile(ctx context.Context, userID string, p goals.Profile, campuses []string, catalogPath string) (ProfilePlan, error) {
	targets, breakdown, err := goals.Compute(p)
	if err != nil {
		return ProfilePlan{}, err
	}

	loc := planner.ResolveLocation(campuses)
	a.logger.Debug("profile translated",
		"calories", targets.Calories,
		"protein", targets.Protein,
		"carbs", targets.Carbs,
		"fat", targets.Fat,
		"location", loc)

	res, err := a.GeneratePlan(ctx, PlanRequest{
		UserID:      userID,
		Location:    loc,
		Goals:       targets,
		CatalogPath: catalogPath,
	})
	if err != nil {
		return ProfilePlan{}, err
	}
	return ProfilePlan{Goals: targets, Breakdown: breakdown, Location: loc, Result: res}, nil
}
