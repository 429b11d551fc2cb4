package scraper

import (
	"context"

	"dining-planner/internal/catalog"
	"dining-planner/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of label fetches kept in flight.
const DefaultConcurrency = 8

// EnrichOptions controls batch enrichment.
type EnrichOptions struct {
	// Concurrency is the number of workers; values below 1 use
	// DefaultConcurrency.
	Concurrency int
	// SkipExisting leaves items that already carry nutrition untouched.
	SkipExisting bool
}

// Enrich attaches nutrition facts to items. Exactly min(Concurrency,
// len(items)) workers pull indices from a shared queue, and result[i]
// always corresponds to items[i]. An item whose label cannot be fetched or
// parsed is returned unchanged.
func (c *Client) Enrich(ctx context.Context, items []catalog.FoodItem, opts EnrichOptions) []catalog.FoodItem {
	results := make([]catalog.FoodItem, len(items))
	if len(items) == 0 {
		return results
	}

	workers := opts.Concurrency
	if workers < 1 {
		workers = DefaultConcurrency
	}
	workers = min(workers, len(items))

	queue := make(chan int, len(items))
	for i := range items {
		queue <- i
	}
	close(queue)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range queue {
				results[i] = c.enrichOne(ctx, items[i], opts.SkipExisting)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Client) enrichOne(ctx context.Context, item catalog.FoodItem, skipExisting bool) catalog.FoodItem {
	if skipExisting && item.Nutrition != nil {
		c.metrics.ObserveEnrichment(metrics.OutcomeSkipped)
		return item
	}

	info, err := c.FetchLabel(ctx, item.Link)
	if err != nil {
		c.logger.Warn("label enrichment failed", "food", item.Name, "link", item.Link, "error", err)
		c.metrics.ObserveEnrichment(metrics.OutcomeFailed)
		return item
	}

	c.metrics.ObserveEnrichment(metrics.OutcomeEnriched)
	item.Nutrition = info
	return item
}
