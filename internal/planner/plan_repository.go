package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StoredPlan is the latest plan saved for a user.
type StoredPlan struct {
	UserID    string
	PlanID    string
	Location  Location
	Goals     Goals
	Score     float64
	Plan      GeneratedPlan
	UpdatedAt time.Time
}

// PlanRepository is a database-backed repository for meal plans. Each user
// has at most one stored plan.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save replaces the stored plan for userID and returns the new record.
func (r *PlanRepository) Save(ctx context.Context, userID string, loc Location, goals Goals, res Result) (*StoredPlan, error) {
	goalsData, err := json.Marshal(goals)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal goals: %w", err)
	}
	planData, err := json.Marshal(res.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	stored := &StoredPlan{
		UserID:    userID,
		PlanID:    uuid.NewString(),
		Location:  loc,
		Goals:     goals,
		Score:     res.Score,
		Plan:      res.Plan,
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO meal_plans (user_id, plan_id, location, goals, score, plan_data, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	plan_id = excluded.plan_id,
	location = excluded.location,
	goals = excluded.goals,
	score = excluded.score,
	plan_data = excluded.plan_data,
	updated_at = excluded.updated_at`,
		stored.UserID, stored.PlanID, string(stored.Location), string(goalsData),
		stored.Score, string(planData), stored.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to save meal plan for user %s: %w", userID, err)
	}
	return stored, nil
}

// Get returns the stored plan for userID, or nil if none exists.
func (r *PlanRepository) Get(ctx context.Context, userID string) (*StoredPlan, error) {
	var (
		p                StoredPlan
		loc, goals, plan string
		updatedAt        int64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, plan_id, location, goals, score, plan_data, updated_at
FROM meal_plans WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.PlanID, &loc, &goals, &p.Score, &plan, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan for user %s: %w", userID, err)
	}

	p.Location = Location(loc)
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if err := json.Unmarshal([]byte(goals), &p.Goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal goals: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &p.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &p, nil
}
