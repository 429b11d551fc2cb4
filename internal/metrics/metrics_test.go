package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dining-planner/internal/database"
	"dining-planner/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	defer db.Close()

	store := metrics.NewStore(db.SQL)

	old, err := store.Record(ctx, metrics.ScrapeRun{
		ScrapeDate: "2026-08-01",
		StartedAt:  time.Now().AddDate(0, 0, -60),
		Duration:   3 * time.Second,
		ItemsTotal: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, old.ID)

	recent, err := store.Record(ctx, metrics.ScrapeRun{
		ScrapeDate:         "2026-10-16",
		Duration:           1500 * time.Millisecond,
		ItemsTotal:         120,
		ItemsWithNutrition: 100,
		ItemsWithSection:   80,
	})
	require.NoError(t, err)
	assert.False(t, recent.StartedAt.IsZero())

	t.Run("Recent", func(t *testing.T) {
		runs, err := store.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, recent.ID, runs[0].ID)
		assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
		assert.Equal(t, 100, runs[0].ItemsWithNutrition)
		assert.Equal(t, old.ID, runs[1].ID)

		limited, err := store.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := store.Cleanup(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		runs, err := store.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, recent.ID, runs[0].ID)
	})
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 1000), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 2048), 0644))

	assert.Equal(t, int64(3048), metrics.DirSize(dir))
	assert.Equal(t, int64(0), metrics.DirSize(filepath.Join(dir, "missing")))

	health := metrics.GetSysHealth(dir)
	assert.Equal(t, "3.0 KB", health.CacheSize)
	assert.Positive(t, health.Goroutines)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", metrics.HumanBytes(512))
	assert.Equal(t, "1.5 KB", metrics.HumanBytes(1536))
	assert.Equal(t, "2.0 MB", metrics.HumanBytes(2*1024*1024))
}
