// internal/tracker/edit.go
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-tracker/internal/models"
)

// EditInput changes an existing entry. Nil fields keep the stored value.
type EditInput struct {
	ID           string
	Name         *string
	Description  *string
	MealCategory *string
	Date         *string
	Calories     *float64
	Nutrition    *models.NutrientTotals
}

// ListInput filters a listing. Empty strings mean no constraint.
type ListInput struct {
	Owner        string
	StartDate    string
	EndDate      string
	MealCategory string
	Limit        int
}

func (s *Service) Get(ctx context.Context, id string) (*models.FoodLogEntry, error) {
	return s.store.Get(ctx, id)
}

// Edit applies the supplied fields of in to an existing entry. The last
// writer wins.
func (s *Service) Edit(ctx context.Context, in EditInput) (*models.FoodLogEntry, error) {
	today := s.today()

	var category *models.MealCategory
	if in.MealCategory != nil {
		c, err := models.ParseMealCategory(*in.MealCategory)
		if err != nil {
			return nil, err
		}
		category = &c
	}
	var date *time.Time
	if in.Date != nil {
		d, err := models.ParseDate(*in.Date, today)
		if err != nil {
			return nil, err
		}
		date = &d
	}

	updated, err := s.store.Modify(ctx, in.ID, func(e *models.FoodLogEntry) error {
		if in.Name != nil {
			e.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			e.Description = *in.Description
		}
		if category != nil {
			e.MealCategory = *category
		}
		if date != nil {
			e.Date = *date
		}
		if in.Calories != nil {
			e.Calories = *in.Calories
		}
		if in.Nutrition != nil {
			detail := *in.Nutrition
			e.NutritionDetail = &detail
		}
		e.UpdatedAt = s.now()

		return e.Validate(today)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !isValidation(err) {
			s.logger.Error(ctx, "failed to update food log", "id", in.ID, "error", err)
			return nil, fmt.Errorf("failed to update food log: %w", err)
		}
		return nil, err
	}

	s.logger.Info(ctx, "food log updated", "id", updated.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "food log deleted", "id", id)
	return nil
}

// List returns entries matching in, newest first.
func (s *Service) List(ctx context.Context, in ListInput) ([]*models.FoodLogEntry, error) {
	filter, err := buildFilter(in.Owner, in.StartDate, in.EndDate, in.MealCategory)
	if err != nil {
		return nil, err
	}
	if in.Limit < 0 {
		return nil, &models.ValidationError{Field: "limit", Message: "must not be negative"}
	}
	filter.Limit = in.Limit

	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list food logs: %w", err)
	}
	if entries == nil {
		entries = []*models.FoodLogEntry{}
	}
	return entries, nil
}

func buildFilter(owner, start, end, category string) (models.LogFilter, error) {
	filter := models.LogFilter{Owner: owner}

	var err error
	if filter.StartDate, err = parseOptionalDate("start_date", start); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseOptionalDate("end_date", end); err != nil {
		return filter, err
	}
	if filter.MealCategory, err = parseOptionalCategory(category); err != nil {
		return filter, err
	}
	return filter, nil
}

func isValidation(err error) bool {
	var verr *models.ValidationError
	return errors.As(err, &verr)
}
