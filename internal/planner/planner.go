package planner

import (
	"context"
	"fmt"
	"log/slog"

	"dining-planner/internal/catalog"
	"dining-planner/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// Options bound the search.
type Options struct {
	// MaxItems is the largest number of items in one meal.
	MaxItems int
	// BeamWidth is the number of partial combos kept per search step.
	BeamWidth int
	// TopK is the number of combos per meal passed to the assembler.
	TopK int
}

// DefaultOptions returns the standard search bounds.
func DefaultOptions() Options {
	return Options{MaxItems: 3, BeamWidth: 250, TopK: 120}
}

// Planner builds daily plans from a normalized catalog.
type Planner struct {
	opts    Options
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates a Planner. Non-positive options fall back to the defaults.
func New(opts Options, m *metrics.Collector, logger *slog.Logger) *Planner {
	def := DefaultOptions()
	if opts.MaxItems < 1 {
		opts.MaxItems = def.MaxItems
	}
	if opts.BeamWidth < 1 {
		opts.BeamWidth = def.BeamWidth
	}
	if opts.TopK < 1 {
		opts.TopK = def.TopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{opts: opts, metrics: m, logger: logger}
}

// Options returns the effective search bounds.
func (p *Planner) Options() Options {
	return p.opts
}

// Candidates builds the ranked combos for every meal across the campuses
// allowed by loc. Each (meal, campus) pair is searched independently and in
// parallel; results are pooled in canonical campus order so the outcome
// does not depend on scheduling.
func (p *Planner) Candidates(cat catalog.Catalog, loc Location, goals Goals) Candidates {
	campuses := loc.Campuses()
	built := make([][]Combo, len(catalog.Meals)*len(campuses))

	var g errgroup.Group
	for mi, meal := range catalog.Meals {
		mealGoal := MealGoal(goals, meal)
		for ci, campus := range campuses {
			items := cat.Items(campus, meal)
			if len(items) == 0 {
				continue
			}
			slot := mi*len(campuses) + ci
			g.Go(func() error {
				built[slot] = BuildCombos(items, mealGoal, campus, p.opts.MaxItems, p.opts.BeamWidth)
				return nil
			})
		}
	}
	_ = g.Wait()

	pooled := make([][]Combo, len(catalog.Meals))
	for mi := range catalog.Meals {
		for ci := range campuses {
			pooled[mi] = append(pooled[mi], built[mi*len(campuses)+ci]...)
		}
		pooled[mi] = topK(pooled[mi], p.opts.TopK)
	}

	return Candidates{Breakfast: pooled[0], Lunch: pooled[1], Dinner: pooled[2]}
}

// Plan selects the best full-day plan from cat. When any meal has no
// candidates it returns an empty plan.
func (p *Planner) Plan(cat catalog.Catalog, loc Location, goals Goals) Result {
	sel, ok := Assemble(p.Candidates(cat, loc, goals), goals, loc)
	if !ok {
		p.logger.Debug("no plan possible", "location", loc)
		p.metrics.ObservePlan(false, 0)
		return Result{Plan: EmptyPlan()}
	}

	p.metrics.ObservePlan(true, sel.Score)
	return Result{
		Plan: GeneratedPlan{
			Breakfast: cloneItems(sel.Breakfast.Items),
			Lunch:     cloneItems(sel.Lunch.Items),
			Dinner:    cloneItems(sel.Dinner.Items),
		},
		Score:    sel.Score,
		Campuses: [3]catalog.Campus{sel.Breakfast.Campus, sel.Lunch.Campus, sel.Dinner.Campus},
	}
}

// GeneratePlan reads a snapshot from src, normalizes it and plans over it.
func (p *Planner) GeneratePlan(ctx context.Context, src catalog.Source, loc Location, goals Goals) (Result, error) {
	items, err := src.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	cat := catalog.Normalize(items)
	p.logger.Debug("catalog normalized", "raw", len(items), "usable", cat.Len())
	return p.Plan(cat, loc, goals), nil
}
