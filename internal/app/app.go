// Package app wires the scraper, catalog store and planner into the
// operations exposed by the command line.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"dining-planner/internal/cache"
	"dining-planner/internal/catalog"
	"dining-planner/internal/config"
	"dining-planner/internal/database"
	"dining-planner/internal/metrics"
	"dining-planner/internal/planner"
	"dining-planner/internal/scraper"
)

// App holds the application's dependencies.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	scraper *scraper.Client
	planner *planner.Planner
	foods   *catalog.Repository
	plans   *planner.PlanRepository
	runs    *metrics.Store
	metrics *metrics.Collector
}

// New builds an App from configuration. Menu listings and labels are cached
// in separate subdirectories of the configured cache directory.
func New(cfg *config.Config, db *database.DB, m *metrics.Collector, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	menus, err := cache.NewDiskCache(filepath.Join(cfg.Cache.Dir, "menus"), logger)
	if err != nil {
		return nil, err
	}
	labels, err := cache.NewDiskCache(filepath.Join(cfg.Cache.Dir, "labels"), logger)
	if err != nil {
		return nil, err
	}

	client, err := scraper.NewClient(scraper.Options{
		BaseURL:           cfg.Scraper.BaseURL,
		UserAgent:         cfg.Scraper.UserAgent,
		Timeout:           cfg.Scraper.Timeout,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		Burst:             cfg.Scraper.Burst,
		MenuCache:         menus,
		LabelCache:        labels,
		MenuTTL:           cfg.Cache.MenuTTL,
		LabelTTL:          cfg.Cache.LabelTTL,
		Metrics:           m,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper client: %w", err)
	}

	mealPlanner := planner.New(planner.Options{
		MaxItems:  cfg.Planner.MaxItems,
		BeamWidth: cfg.Planner.BeamWidth,
		TopK:      cfg.Planner.TopK,
	}, m, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		scraper: client,
		planner: mealPlanner,
		foods:   catalog.NewRepository(db.SQL),
		plans:   planner.NewPlanRepository(db.SQL),
		runs:    metrics.NewStore(db.SQL),
		metrics: m,
	}, nil
}

// Source returns the catalog the planner reads. A non-empty path selects a
// food.json snapshot, otherwise the most recent date in the database is used.
func (a *App) Source(path string) catalog.Source {
	if path != "" {
		return catalog.FileSource{Path: path}
	}
	return a.foods
}

// RecentRuns returns the latest recorded refresh runs, newest first.
func (a *App) RecentRuns(ctx context.Context, limit int) ([]metrics.ScrapeRun, error) {
	return a.runs.Recent(ctx, limit)
}

// CleanupRuns deletes refresh runs older than days and returns how many were
// removed.
func (a *App) CleanupRuns(ctx context.Context, days int) (int64, error) {
	return a.runs.Cleanup(ctx, days)
}

// Health reports process and cache statistics.
func (a *App) Health() metrics.SysHealth {
	return metrics.GetSysHealth(a.cfg.Cache.Dir)
}

// LatestPlan returns the stored plan for userID, or nil if none exists.
func (a *App) LatestPlan(ctx context.Context, userID string) (*planner.StoredPlan, error) {
	return a.plans.Get(ctx, userID)
}

// Summarize counts the items of a refresh.
func Summarize(items []catalog.FoodItem) Summary {
	s := Summary{
		ByCampus: make(map[string]int),
		ByMeal:   make(map[string]int),
	}
	for _, it := range items {
		s.Total++
		if it.Nutrition != nil && it.Nutrition.Calories != nil {
			s.WithNutrition++
		}
		if it.Section != "" {
			s.WithSection++
		}
		s.ByCampus[it.Campus]++
		s.ByMeal[it.Meal]++
	}
	return s
}

// Summary describes one catalog refresh.
type Summary struct {
	RunID         string
	Date          string
	Total         int
	WithNutrition int
	WithSection   int
	ByCampus      map[string]int
	ByMeal        map[string]int
	Elapsed       time.Duration
}
