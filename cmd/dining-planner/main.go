// Package main provides the dining-planner command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dining-planner/internal/app"
	"dining-planner/internal/config"
	"dining-planner/internal/database"
	"dining-planner/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "dining-planner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
}

// runtimeEnv is everything a command needs once configuration is loaded.
type runtimeEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	app      *app.App
	db       *database.DB
}

func (e *runtimeEnv) Close() {
	if err := e.db.Close(); err != nil {
		e.logger.Warn("failed to close database", "error", err)
	}
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Build daily dining-hall meal plans that hit nutrition targets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		scrapeCmd(g),
		planCmd(g),
		profileCmd(g),
		runsCmd(g),
		cleanupCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// setup loads .env and configuration, opens the database and builds the
// application.
func setup(g *globals) (*runtimeEnv, error) {
	logger := newLogger(g.logLevel)
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application, err := app.New(cfg, db, metrics.NewCollector(registry), logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &runtimeEnv{cfg: cfg, logger: logger, registry: registry, app: application, db: db}, nil
}
