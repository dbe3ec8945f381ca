// cmd/food-tracker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"food-tracker/internal/app"
	"food-tracker/internal/config"
	"food-tracker/internal/nutrition"
	"food-tracker/internal/tracker"
)

const version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads .env, reads the config and creates an App. The caller must
// defer a.Close().
func newApp() (*app.App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(paths.ConfigPath, paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var owner string

var rootCmd = &cobra.Command{
	Use:          "food-tracker",
	Short:        "Personal food log with nutrition lookup",
	Version:      version,
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(paths.BaseDir)
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Base Dir: %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.Load(paths.ConfigPath, paths.BaseDir)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		apiKey := "(not set)"
		if cfg.Nutrition.APIKey != "" {
			apiKey = "(set)"
		}

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Server:     %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Lookup URL: %s (timeout %s)\n", cfg.Nutrition.BaseURL, cfg.Nutrition.Timeout.Duration)
		fmt.Printf("API Key:    %s\n", apiKey)
		fmt.Printf("Log Level:  %s\n", cfg.Logging.Level)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP tool server",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		srv := a.NewServer(host, port)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(ctx); err != nil {
				errCh <- err
			}
		}()

		var serveErr error
		select {
		case <-sigCh:
			a.Logger().Info(ctx, "received shutdown signal")
		case serveErr = <-errCh:
			a.Logger().Error(ctx, "server error", "error", serveErr)
		}

		a.Logger().Info(ctx, "shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Stop(shutdownCtx); err != nil {
			a.Logger().Error(ctx, "error during shutdown", "error", err)
		}
		return serveErr
	},
}

var logCmd = &cobra.Command{
	Use:   "log <description>",
	Short: "Log food from a free-text description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mealType, _ := cmd.Flags().GetString("meal-type")
		date, _ := cmd.Flags().GetString("date")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		logged, err := a.Service().LogNatural(cmd.Context(), tracker.NaturalInput{
			Owner:        owner,
			Query:        args[0],
			MealCategory: mealType,
			Date:         date,
		})
		if err != nil {
			return userError(err)
		}

		printEntry(logged.Entry)
		if len(logged.Items) == 0 {
			fmt.Println("No foods recognized; saved the description as entered.")
		}
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <description>",
	Short: "Preview the nutrition lookup without saving",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		draft, err := a.Service().Preview(cmd.Context(), args[0])
		if err != nil {
			return userError(err)
		}

		fmt.Printf("%s (%.1f cal)\n", draft.Name, draft.Calories)
		if draft.Description != "" {
			fmt.Println(draft.Description)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Log food manually",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		mealType, _ := cmd.Flags().GetString("meal-type")
		date, _ := cmd.Flags().GetString("date")
		calories, _ := cmd.Flags().GetFloat64("calories")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.Service().LogManual(cmd.Context(), tracker.ManualInput{
			Owner:        owner,
			Name:         args[0],
			Description:  description,
			MealCategory: mealType,
			Date:         date,
			Calories:     calories,
		})
		if err != nil {
			return err
		}

		printEntry(entry)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a logged entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		in := tracker.EditInput{ID: args[0]}
		flags := cmd.Flags()
		if flags.Changed("name") {
			v, _ := flags.GetString("name")
			in.Name = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			in.Description = &v
		}
		if flags.Changed("meal-type") {
			v, _ := flags.GetString("meal-type")
			in.MealCategory = &v
		}
		if flags.Changed("date") {
			v, _ := flags.GetString("date")
			in.Date = &v
		}
		if flags.Changed("calories") {
			v, _ := flags.GetFloat64("calories")
			in.Calories = &v
		}

		entry, err := a.Service().Edit(cmd.Context(), in)
		if err != nil {
			return err
		}

		printEntry(entry)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a logged entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		mealType, _ := cmd.Flags().GetString("meal-type")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Service().List(cmd.Context(), tracker.ListInput{
			Owner:        owner,
			StartDate:    start,
			EndDate:      end,
			MealCategory: mealType,
			Limit:        limit,
		})
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}
		printEntries(entries)
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's log and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Service().Today(cmd.Context(), owner)
		if err != nil {
			return err
		}

		printToday(summary)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show statistics and the last seven days",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		mealType, _ := cmd.Flags().GetString("meal-type")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		dashboard, err := a.Service().Dashboard(cmd.Context(), tracker.DashboardInput{
			Owner:        owner,
			StartDate:    start,
			EndDate:      end,
			MealCategory: mealType,
		})
		if err != nil {
			return err
		}

		printDashboard(dashboard)
		return nil
	},
}

// userError replaces a lookup failure with its user-facing message.
func userError(err error) error {
	var lerr *nutrition.LookupError
	if errors.As(err, &lerr) {
		return errors.New(lerr.Message)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "", "Owner the entries belong to")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Host address (overrides config)")
	serveCmd.Flags().Int("port", 0, "Port (overrides config)")

	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringP("meal-type", "m", "", "breakfast, lunch, dinner or snack")
	logCmd.Flags().StringP("date", "d", "", "Date eaten (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(parseCmd)

	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("description", "", "Free-form notes")
	addCmd.Flags().StringP("meal-type", "m", "", "breakfast, lunch, dinner or snack")
	addCmd.Flags().StringP("date", "d", "", "Date eaten (YYYY-MM-DD, default today)")
	addCmd.Flags().Float64P("calories", "c", 0, "Calories")

	rootCmd.AddCommand(editCmd)
	editCmd.Flags().String("name", "", "New name")
	editCmd.Flags().String("description", "", "New notes")
	editCmd.Flags().StringP("meal-type", "m", "", "New meal type")
	editCmd.Flags().StringP("date", "d", "", "New date (YYYY-MM-DD)")
	editCmd.Flags().Float64P("calories", "c", 0, "New calories")

	rootCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	listCmd.Flags().StringP("meal-type", "m", "", "Only this meal type")
	listCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show")

	rootCmd.AddCommand(todayCmd)

	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	dashboardCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	dashboardCmd.Flags().StringP("meal-type", "m", "", "Only this meal type")
}
