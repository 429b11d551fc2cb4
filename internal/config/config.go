// Package config loads application settings from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Cache    CacheConfig    `yaml:"cache"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Planner  PlannerConfig  `yaml:"planner"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig locates the food.json snapshot.
type CatalogConfig struct {
	// SnapshotPath is written after each refresh and can be planned over
	// without a database.
	SnapshotPath string `yaml:"snapshot_path"`
}

// CacheConfig configures the on-disk document caches.
type CacheConfig struct {
	Dir      string        `yaml:"dir"`
	MenuTTL  time.Duration `yaml:"menu_ttl"`
	LabelTTL time.Duration `yaml:"label_ttl"`
}

// ScraperConfig configures access to the dining portal.
type ScraperConfig struct {
	BaseURL           string        `yaml:"base_url"`
	UserAgent         string        `yaml:"user_agent"`
	Concurrency       int           `yaml:"concurrency"`
	// RequestsPerSecond caps portal requests across all workers. Zero leaves
	// fetches unlimited so only Concurrency bounds them.
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
}

// PlannerConfig bounds the plan search.
type PlannerConfig struct {
	MaxItems  int `yaml:"max_items"`
	BeamWidth int `yaml:"beam_width"`
	TopK      int `yaml:"top_k"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "data/dining.db"},
		Catalog:  CatalogConfig{SnapshotPath: "data/food.json"},
		Cache: CacheConfig{
			Dir:      ".cache/dining",
			MenuTTL:  6 * time.Hour,
			LabelTTL: 720 * time.Hour,
		},
		Scraper: ScraperConfig{
			BaseURL:           "https://menuportal23.dining.rutgers.edu/foodpronet/",
			UserAgent:         "Mozilla/5.0 (compatible; RutgersMenuScraper/1.0)",
			Concurrency:       8,
			RequestsPerSecond: 0,
			Burst:             8,
			Timeout:           20 * time.Second,
		},
		Planner: PlannerConfig{MaxItems: 3, BeamWidth: 250, TopK: 120},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// when path is not empty, then environment overrides, and validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DINING_DB_PATH"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("DINING_CACHE_DIR"); ok && v != "" {
		c.Cache.Dir = v
	}
	if v, ok := lookup("DINING_CATALOG_PATH"); ok && v != "" {
		c.Catalog.SnapshotPath = v
	}
	if v, ok := lookup("DINING_MENU_BASE_URL"); ok && v != "" {
		c.Scraper.BaseURL = v
	}
	if v, ok := lookup("DINING_USER_AGENT"); ok && v != "" {
		c.Scraper.UserAgent = v
	}
	if v, ok := lookup("DINING_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DINING_CONCURRENCY must be an integer: %w", err)
		}
		c.Scraper.Concurrency = n
	}
	if v, ok := lookup("DINING_REQUESTS_PER_SECOND"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DINING_REQUESTS_PER_SECOND must be a number: %w", err)
		}
		c.Scraper.RequestsPerSecond = f
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("database.path is required")
	case c.Catalog.SnapshotPath == "":
		return fmt.Errorf("catalog.snapshot_path is required")
	case c.Cache.Dir == "":
		return fmt.Errorf("cache.dir is required")
	case c.Cache.MenuTTL <= 0:
		return fmt.Errorf("cache.menu_ttl must be positive")
	case c.Cache.LabelTTL <= 0:
		return fmt.Errorf("cache.label_ttl must be positive")
	case c.Scraper.BaseURL == "":
		return fmt.Errorf("scraper.base_url is required")
	case c.Scraper.Concurrency < 1:
		return fmt.Errorf("scraper.concurrency must be at least 1")
	case c.Scraper.RequestsPerSecond < 0:
		return fmt.Errorf("scraper.requests_per_second must not be negative")
	case c.Planner.MaxItems < 1:
		return fmt.Errorf("planner.max_items must be at least 1")
	case c.Planner.BeamWidth < 1:
		return fmt.Errorf("planner.beam_width must be at least 1")
	case c.Planner.TopK < 1:
		return fmt.Errorf("planner.top_k must be at least 1")
	}
	return nil
}
