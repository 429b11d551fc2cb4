package app

import (
	"context"
	"fmt"
	"time"

	"dining-planner/internal/catalog"
	"dining-planner/internal/metrics"
	"dining-planner/internal/scraper"
)

// RefreshOptions selects what a refresh scrapes.
type RefreshOptions struct {
	Date     time.Time
	Campuses []catalog.Campus
	// SnapshotPath receives a food.json copy of the refreshed items. Empty
	// uses the configured catalog snapshot path.
	SnapshotPath string
}

// RefreshCatalog scrapes the menus for one date, enriches the items with
// nutrition labels and stores them. Items already enriched for the date are
// reused without fetching their labels again.
func (a *App) RefreshCatalog(ctx context.Context, opts RefreshOptions) (Summary, error) {
	started := time.Now()
	if opts.Date.IsZero() {
		opts.Date = started
	}
	if len(opts.Campuses) == 0 {
		opts.Campuses = catalog.Campuses
	}
	if opts.SnapshotPath == "" {
		opts.SnapshotPath = a.cfg.Catalog.SnapshotPath
	}
	date := scraper.ISODate(opts.Date)

	a.logger.Info("refreshing catalog", "date", date, "campuses", opts.Campuses)

	items, err := a.scraper.ScrapeAll(ctx, opts.Date, opts.Campuses)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to scrape menus: %w", err)
	}

	reused, err := a.reuseNutrition(ctx, date, items)
	if err != nil {
		return Summary{}, err
	}
	a.logger.Debug("menus scraped", "items", len(items), "already_enriched", reused)

	items = a.scraper.Enrich(ctx, items, scraper.EnrichOptions{
		Concurrency:  a.cfg.Scraper.Concurrency,
		SkipExisting: true,
	})

	if err := a.foods.UpsertMany(ctx, items); err != nil {
		return Summary{}, fmt.Errorf("failed to store food items: %w", err)
	}

	if opts.SnapshotPath != "" {
		if err := catalog.SaveFile(opts.SnapshotPath, items); err != nil {
			return Summary{}, err
		}
	}

	summary := Summarize(items)
	summary.Date = date
	summary.Elapsed = time.Since(started)

	run, err := a.runs.Record(ctx, metrics.ScrapeRun{
		ScrapeDate:         date,
		StartedAt:          started.UTC(),
		Duration:           summary.Elapsed,
		ItemsTotal:         summary.Total,
		ItemsWithNutrition: summary.WithNutrition,
		ItemsWithSection:   summary.WithSection,
	})
	if err != nil {
		a.logger.Warn("failed to record refresh run", "error", err)
	} else {
		summary.RunID = run.ID
	}

	a.logger.Info("catalog refreshed",
		"date", date,
		"total", summary.Total,
		"with_nutrition", summary.WithNutrition,
		"with_section", summary.WithSection,
		"elapsed", summary.Elapsed)
	return summary, nil
}

// reuseNutrition copies nutrition from items already stored for date onto
// matching scraped items and returns how many were filled.
func (a *App) reuseNutrition(ctx context.Context, date string, items []catalog.FoodItem) (int, error) {
	stored, err := a.foods.ListByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load stored items: %w", err)
	}

	known := make(map[string]*catalog.NutritionInfo, len(stored))
	for _, it := range stored {
		if it.Nutrition != nil {
			known[it.Key()] = it.Nutrition
		}
	}

	n := 0
	for i := range items {
		if info, ok := known[items[i].Key()]; ok {
			items[i].Nutrition = info
			n++
		}
	}
	return n, nil
}
