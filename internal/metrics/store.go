package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScrapeRun records the outcome of one catalog refresh.
type ScrapeRun struct {
	ID                 string
	ScrapeDate         string
	StartedAt          time.Time
	Duration           time.Duration
	ItemsTotal         int
	ItemsWithNutrition int
	ItemsWithSection   int
}

// Store handles persistence of scrape runs to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a run, assigning an ID and start time when missing.
func (s *Store) Record(ctx context.Context, run ScrapeRun) (ScrapeRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO scrape_runs (id, scrape_date, started_at, duration_ms, items_total, items_with_nutrition, items_with_section)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ScrapeDate, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
		run.ItemsTotal, run.ItemsWithNutrition, run.ItemsWithSection)
	if err != nil {
		return run, fmt.Errorf("failed to record scrape run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ScrapeRun, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, scrape_date, started_at, duration_ms, items_total, items_with_nutrition, items_with_section
FROM scrape_runs
ORDER BY started_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer rows.Close()

	var runs []ScrapeRun
	for rows.Next() {
		var (
			r                 ScrapeRun
			started, duration int64
		)
		if err := rows.Scan(&r.ID, &r.ScrapeDate, &started, &duration,
			&r.ItemsTotal, &r.ItemsWithNutrition, &r.ItemsWithSection); err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scrape runs: %w", err)
	}
	return runs, nil
}

// Cleanup removes runs older than the specified number of days and reports
// how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM scrape_runs WHERE started_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up scrape runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed scrape runs: %w", err)
	}
	return n, nil
}
