package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Source supplies a read-only catalog snapshot for one planning request.
type Source interface {
	Snapshot(ctx context.Context) ([]FoodItem, error)
}

// FileSource reads a food.json style snapshot from disk.
type FileSource struct {
	Path string
}

// Snapshot loads the file on every call so a refreshed file is picked up.
func (s FileSource) Snapshot(_ context.Context) ([]FoodItem, error) {
	return LoadFile(s.Path)
}

// LoadFile reads a JSON array of food items. Elements that do not decode
// as a FoodItem are skipped; only a file that is not a JSON array fails.
func LoadFile(path string) ([]FoodItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog file %s: %w", path, err)
	}

	items := make([]FoodItem, 0, len(raw))
	for i, elem := range raw {
		var it FoodItem
		if err := json.Unmarshal(elem, &it); err != nil {
			slog.Debug("skipping unreadable catalog entry", "path", path, "index", i, "error", err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// SaveFile rewrites path with items as indented JSON.
func SaveFile(path string, items []FoodItem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	if items == nil {
		items = []FoodItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
