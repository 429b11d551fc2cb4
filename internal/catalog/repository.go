package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Repository is a database-backed store of scraped food items keyed by
// their dedup identity.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const upsertFoodItem = `
INSERT INTO food_items (item_key, campus, meal, date, name, link, data, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(item_key) DO UPDATE SET
	data = excluded.data,
	updated_at = excluded.updated_at`

// UpsertMany inserts or replaces items in a single transaction.
func (r *Repository) UpsertMany(ctx context.Context, items []FoodItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertFoodItem)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().UnixMilli()
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("failed to marshal food item %q: %w", it.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, it.Key(), it.Campus, it.Meal, it.Date, it.Name, it.Link, string(data), now); err != nil {
			return fmt.Errorf("failed to upsert food item %q: %w", it.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit food items: %w", err)
	}
	return nil
}

// ListByDate returns the items scraped for an ISO date in insertion order.
func (r *Repository) ListByDate(ctx context.Context, date string) ([]FoodItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT item_key, data FROM food_items WHERE date = ? ORDER BY rowid`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	defer rows.Close()

	var items []FoodItem
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		var it FoodItem
		if err := json.Unmarshal([]byte(data), &it); err != nil {
			slog.Warn("skipping unreadable food item", "key", key, "error", err)
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate food items: %w", err)
	}
	return items, nil
}

// LatestDate returns the most recent scrape date, or "" when the store is
// empty.
func (r *Repository) LatestDate(ctx context.Context) (string, error) {
	var date sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(date) FROM food_items`).Scan(&date); err != nil {
		return "", fmt.Errorf("failed to read latest date: %w", err)
	}
	return date.String, nil
}

// Snapshot returns the items of the most recent scrape date.
func (r *Repository) Snapshot(ctx context.Context) ([]FoodItem, error) {
	date, err := r.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	if date == "" {
		return nil, nil
	}
	return r.ListByDate(ctx, date)
}

// Count returns the number of stored items.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM food_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count food items: %w", err)
	}
	return int(n), nil
}
