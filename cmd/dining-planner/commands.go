package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dining-planner/internal/app"
	"dining-planner/internal/catalog"
	"dining-planner/internal/goals"
	"dining-planner/internal/metrics"
	"dining-planner/internal/planner"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func scrapeCmd(g *globals) *cobra.Command {
	var (
		date        string
		campuses    []string
		snapshot    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape menus and nutrition labels into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(g)
			if err != nil {
				return err
			}
			defer e.Close()

			opts := app.RefreshOptions{SnapshotPath: snapshot}
			if date != "" {
				if opts.Date, err = time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}
			for _, raw := range campuses {
				campus, ok := catalog.ParseCampus(raw)
				if !ok {
					return fmt.Errorf("unknown campus %q", raw)
				}
				opts.Campuses = append(opts.Campuses, campus)
			}

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						e.logger.Error("metrics server failed", "error", err)
					}
				}()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(ctx)
				}()
				e.logger.Info("serving metrics", "addr", metricsAddr)
			}

			summary, err := e.app.RefreshCatalog(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSummary(summary, e.app.Health())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Menu date as YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&campuses, "campus", nil, "Campuses to scrape (livingston, atrium)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Write the catalog snapshot here (default catalog.snapshot_path / DINING_CATALOG_PATH)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while scraping")
	return cmd
}

func planCmd(g *globals) *cobra.Command {
	var (
		location    string
		targets     planner.Goals
		catalogPath string
		userID      string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a plan for explicit calorie and macro targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := planner.ParseLocation(location)
			if err != nil {
				return err
			}

			e, err := setup(g)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.app.GeneratePlan(cmd.Context(), app.PlanRequest{
				UserID:      userID,
				Location:    loc,
				Goals:       targets,
				CatalogPath: catalogPath,
			})
			if err != nil {
				return err
			}
			printPlan(targets, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "any", "livingston, atrium or any")
	cmd.Flags().Float64Var(&targets.Calories, "calories", 2000, "Daily calories")
	cmd.Flags().Float64Var(&targets.Protein, "protein", 150, "Daily protein (g)")
	cmd.Flags().Float64Var(&targets.Carbs, "carbs", 200, "Daily carbohydrates (g)")
	cmd.Flags().Float64Var(&targets.Fat, "fat", 60, "Daily fat (g)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Plan over a food.json snapshot instead of the database")
	cmd.Flags().StringVar(&userID, "user", "", "Store the plan as this user's latest")
	return cmd
}

func profileCmd(g *globals) *cobra.Command {
	var (
		sex, activity, goal string
		age, height, weight float64
		campuses            []string
		catalogPath         string
		userID              string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Derive targets from a body profile and build a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := goals.Profile{Age: age, HeightIn: height, WeightLb: weight}
			var err error
			if p.Sex, err = goals.ParseSex(sex); err != nil {
				return err
			}
			if p.Activity, err = goals.ParseActivity(activity); err != nil {
				return err
			}
			if p.Goal, err = goals.ParseGoal(goal); err != nil {
				return err
			}

			e, err := setup(g)
			if err != nil {
				return err
			}
			defer e.Close()

			out, err := e.app.PlanForProfile(cmd.Context(), userID, p, campuses, catalogPath)
			if err != nil {
				return err
			}

			b := out.Breakdown
			fmt.Printf("Profile: %s, %s, %s\n", p.Sex, p.Activity, p.Goal)
			fmt.Printf("  height %.1f cm, weight %.1f kg, lean mass %.1f kg\n", b.HeightCm, b.WeightKg, b.LBMKg)
			fmt.Printf("  BMR %.0f kcal, TDEE %.0f kcal\n", b.BMR, b.TDEE)
			fmt.Printf("Location: %s\n\n", out.Location)
			printPlan(out.Goals, out.Result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sex, "sex", "", "male or female")
	cmd.Flags().Float64Var(&age, "age", 0, "Age in years")
	cmd.Flags().Float64Var(&height, "height", 0, "Height in inches")
	cmd.Flags().Float64Var(&weight, "weight", 0, "Weight in pounds")
	cmd.Flags().StringVar(&activity, "activity", "moderate", "sedentary, light, moderate or heavy")
	cmd.Flags().StringVar(&goal, "goal", "", "maintain, lose, gain or recomp (default maintain)")
	cmd.Flags().StringSliceVar(&campuses, "campus", nil, "Campuses to eat at; one campus restricts the plan to it")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Plan over a food.json snapshot instead of the database")
	cmd.Flags().StringVar(&userID, "user", "", "Store the plan as this user's latest")
	_ = cmd.MarkFlagRequired("sex")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("weight")
	return cmd
}

func runsCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent catalog refreshes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(g)
			if err != nil {
				return err
			}
			defer e.Close()

			runs, err := e.app.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No refresh runs recorded.")
				return nil
			}
			fmt.Printf("%-20s %-10s %8s %6s %10s %8s\n", "STARTED", "DATE", "DURATION", "ITEMS", "NUTRITION", "SECTION")
			for _, r := range runs {
				fmt.Printf("%-20s %-10s %8s %6d %10d %8d\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ScrapeDate,
					r.Duration.Round(time.Millisecond), r.ItemsTotal, r.ItemsWithNutrition, r.ItemsWithSection)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	return cmd
}

func cleanupCmd(g *globals) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old refresh run records",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(g)
			if err != nil {
				return err
			}
			defer e.Close()

			affected, err := e.app.CleanupRuns(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Printf("Successfully removed %d old run records.\n", affected)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Keep records for the last N days")
	return cmd
}

func printSummary(s app.Summary, health metrics.SysHealth) {
	fmt.Printf("Refreshed %s in %s (run %s)\n", s.Date, s.Elapsed.Round(time.Millisecond), s.RunID)
	fmt.Printf("  items: %d, with nutrition: %d, with section: %d\n", s.Total, s.WithNutrition, s.WithSection)
	for _, campus := range catalog.Campuses {
		if n, ok := s.ByCampus[string(campus)]; ok {
			fmt.Printf("  %-12s %d\n", campus, n)
		}
	}
	for _, meal := range catalog.Meals {
		if n, ok := s.ByMeal[string(meal)]; ok {
			fmt.Printf("  %-12s %d\n", meal, n)
		}
	}
	fmt.Printf("  cache: %s\n", health.CacheSize)
}

func printPlan(targets planner.Goals, res planner.Result) {
	if res.Plan.IsEmpty() {
		fmt.Println("No plan could be built from the current catalog.")
		return
	}

	fmt.Println("=== DAILY MEAL PLAN ===")
	for i, meal := range catalog.Meals {
		t := res.Plan.MealTotals(meal)
		fmt.Printf("\n%s @ %s (%.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat)\n",
			meal, res.Campuses[i], t.Calories, t.ProteinG, t.Carbs, t.Fat)
		for _, it := range res.Plan.Meal(meal) {
			fmt.Printf("  - %s\n", it.Name)
		}
	}

	total := res.Plan.Totals()
	fmt.Println("\n=== TOTALS ===")
	fmt.Printf("%-9s %8s %8s\n", "", "plan", "target")
	fmt.Printf("%-9s %8.0f %8.0f\n", "calories", total.Calories, targets.Calories)
	fmt.Printf("%-9s %8.0f %8.0f\n", "protein", total.ProteinG, targets.Protein)
	fmt.Printf("%-9s %8.0f %8.0f\n", "carbs", total.Carbs, targets.Carbs)
	fmt.Printf("%-9s %8.0f %8.0f\n", "fat", total.Fat, targets.Fat)
	fmt.Printf("score: %.2f\n", res.Score)
}
