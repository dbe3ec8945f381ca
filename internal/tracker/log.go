// internal/tracker/log.go
package tracker

import (
	"context"
	"fmt"
	"strings"

	"food-tracker/internal/models"
	"food-tracker/internal/nutrition"
)

const emptyQueryMessage = "Please describe what you ate."

// NaturalInput is a free-text food log request.
type NaturalInput struct {
	Owner        string
	Query        string
	MealCategory string
	Date         string
}

// ManualInput is a structured food log request.
type ManualInput struct {
	Owner        string
	Name         string
	Description  string
	MealCategory string
	Date         string
	Calories     float64
}

// LoggedFood is the result of a natural-language log.
type LoggedFood struct {
	Entry *models.FoodLogEntry `json:"entry"`
	Items []models.FoodItem    `json:"items"`
}

// Preview runs the lookup and returns the draft that LogNatural would store.
func (s *Service) Preview(ctx context.Context, query string) (*models.Draft, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &models.ValidationError{Field: "natural_query", Message: emptyQueryMessage}
	}

	resp, err := s.lookup.ParseFoodQuery(ctx, query)
	if err != nil {
		s.logger.Warn(ctx, "nutrition lookup failed", "error", err)
		return nil, err
	}

	draft := nutrition.FormatForPersistence(query, resp)
	return &draft, nil
}

// LogNatural looks up query and stores the resulting entry. A failed lookup
// stores nothing and returns the *nutrition.LookupError. A lookup that
// recognizes no items stores the fallback draft.
func (s *Service) LogNatural(ctx context.Context, in NaturalInput) (*LoggedFood, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, &models.ValidationError{Field: "natural_query", Message: emptyQueryMessage}
	}

	category, err := models.ParseMealCategory(in.MealCategory)
	if err != nil {
		return nil, err
	}
	today := s.today()
	date, err := models.ParseDate(in.Date, today)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateDate(date, today); err != nil {
		return nil, err
	}

	draft, err := s.Preview(ctx, query)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.FoodLogEntry{
		ID:              s.idgen.New(),
		Owner:           in.Owner,
		Name:            models.TruncateName(draft.Name),
		Description:     draft.Description,
		MealCategory:    category,
		Date:            date,
		Calories:        draft.Calories,
		NutritionDetail: draft.NutritionDetail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.create(ctx, entry); err != nil {
		return nil, err
	}

	items := draft.Items
	if items == nil {
		items = []models.FoodItem{}
	}
	s.logger.Info(ctx, "food logged from description",
		"id", entry.ID, "items", len(draft.Items), "calories", entry.Calories)
	return &LoggedFood{Entry: entry, Items: items}, nil
}

// LogManual stores an entry from structured fields.
func (s *Service) LogManual(ctx context.Context, in ManualInput) (*models.FoodLogEntry, error) {
	category, err := models.ParseMealCategory(in.MealCategory)
	if err != nil {
		return nil, err
	}
	today := s.today()
	date, err := models.ParseDate(in.Date, today)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.FoodLogEntry{
		ID:           s.idgen.New(),
		Owner:        in.Owner,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		MealCategory: category,
		Date:         date,
		Calories:     in.Calories,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "food logged", "id", entry.ID, "meal_type", entry.MealCategory)
	return entry, nil
}

func (s *Service) create(ctx context.Context, entry *models.FoodLogEntry) error {
	if err := entry.Validate(s.today()); err != nil {
		return err
	}
	if err := s.store.Create(ctx, entry); err != nil {
		s.logger.Error(ctx, "failed to store food log", "error", err)
		return fmt.Errorf("failed to save food log: %w", err)
	}
	return nil
}
