// internal/tracker/summary.go
package tracker

import (
	"context"
	"fmt"
	"time"

	"food-tracker/internal/models"
	"food-tracker/internal/stats"
)

// TodaySummary is the current day's log, with totals measured against the
// daily targets.
type TodaySummary struct {
	Date       time.Time                   `json:"date"`
	Entries    []*models.FoodLogEntry      `json:"entries"`
	MealCounts map[models.MealCategory]int `json:"meal_counts"`
	Totals     models.NutrientTotals       `json:"totals"`
	Progress   []stats.NutrientProgress    `json:"target_progress"`
}

// DashboardInput filters the statistics part of the dashboard.
type DashboardInput struct {
	Owner        string
	StartDate    string
	EndDate      string
	MealCategory string
}

// Dashboard combines statistics over the filtered entries with the owner's
// counts for the last seven days.
type Dashboard struct {
	Statistics   stats.Statistics       `json:"statistics"`
	Distribution []stats.MealTypeCount  `json:"meal_type_distribution"`
	Weekly       []stats.DayCount       `json:"weekly_counts"`
	Entries      []*models.FoodLogEntry `json:"entries"`
}

func (s *Service) Today(ctx context.Context, owner string) (*TodaySummary, error) {
	today := s.today()
	entries, err := s.store.List(ctx, models.LogFilter{Owner: owner, StartDate: &today, EndDate: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to list today's food logs: %w", err)
	}
	if entries == nil {
		entries = []*models.FoodLogEntry{}
	}

	totals := stats.NutritionTotals(entries)
	return &TodaySummary{
		Date:       today,
		Entries:    entries,
		MealCounts: stats.MealCounts(entries),
		Totals:     totals,
		Progress:   stats.TargetProgress(totals),
	}, nil
}

func (s *Service) Dashboard(ctx context.Context, in DashboardInput) (*Dashboard, error) {
	filter, err := buildFilter(in.Owner, in.StartDate, in.EndDate, in.MealCategory)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list food logs: %w", err)
	}
	if entries == nil {
		entries = []*models.FoodLogEntry{}
	}

	today := s.today()
	weekStart := today.AddDate(0, 0, -(stats.WeekDays - 1))
	recent, err := s.store.List(ctx, models.LogFilter{Owner: in.Owner, StartDate: &weekStart, EndDate: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent food logs: %w", err)
	}

	return &Dashboard{
		Statistics:   stats.Compute(entries),
		Distribution: stats.MealTypeDistribution(entries),
		Weekly:       stats.WeeklyDailyCounts(recent, today),
		Entries:      entries,
	}, nil
}
