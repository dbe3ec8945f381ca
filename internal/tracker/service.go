// internal/tracker/service.go

// Package tracker implements the food logging workflow on top of a store and
// a nutrition lookup.
package tracker

import (
	"context"
	"strings"
	"time"

	"food-tracker/internal/logging"
	"food-tracker/internal/models"
	"food-tracker/internal/nutrition"
	"food-tracker/internal/storage"
)

// ErrNotFound is returned when an entry ID does not exist.
var ErrNotFound = storage.ErrNotFound

// Store persists food log entries.
type Store interface {
	Create(ctx context.Context, entry *models.FoodLogEntry) error
	Get(ctx context.Context, id string) (*models.FoodLogEntry, error)
	Modify(ctx context.Context, id string, fn func(*models.FoodLogEntry) error) (*models.FoodLogEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.LogFilter) ([]*models.FoodLogEntry, error)
}

// NutritionLookup turns a free-text description into provider items.
type NutritionLookup interface {
	ParseFoodQuery(ctx context.Context, query string) (*nutrition.Response, error)
}

// Service coordinates lookups, validation and persistence for the CLI and
// the tool server.
type Service struct {
	store  Store
	lookup NutritionLookup
	logger logging.Logger
	clock  Clock
	idgen  IDGenerator
}

func NewService(store Store, lookup NutritionLookup, logger logging.Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:  store,
		lookup: lookup,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// today returns the current calendar day.
func (s *Service) today() time.Time {
	return models.DateOf(s.clock.Now())
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// parseOptionalDate parses s, or returns nil when s is empty.
func parseOptionalDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil, &models.ValidationError{Field: field, Message: "expected YYYY-MM-DD"}
	}
	return &d, nil
}

// parseOptionalCategory parses s as a filter; empty means any category.
func parseOptionalCategory(s string) (models.MealCategory, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return models.ParseMealCategory(s)
}
