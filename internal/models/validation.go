// internal/models/validation.go
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength = 200
	DateLayout    = "2006-01-02"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DateOf strips the clock from t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields today.
func ParseDate(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateOf(today), nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// ValidateDate rejects dates after today.
func ValidateDate(date, today time.Time) error {
	if DateOf(date).After(DateOf(today)) {
		return &ValidationError{Field: "date", Message: "Date cannot be in the future."}
	}
	return nil
}

// TruncateName cuts s to MaxNameLength runes.
func TruncateName(s string) string {
	if utf8.RuneCountInString(s) <= MaxNameLength {
		return s
	}
	return string([]rune(s)[:MaxNameLength])
}

// Validate checks e against the entry rules, using today as the reference day.
func (e *FoodLogEntry) Validate(today time.Time) error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
	}
	if !e.MealCategory.Valid() {
		return &ValidationError{Field: "meal_type", Message: "must be one of breakfast, lunch, dinner, snack"}
	}
	if math.IsNaN(e.Calories) || math.IsInf(e.Calories, 0) {
		return &ValidationError{Field: "calories", Message: "must be a number"}
	}
	if e.Calories < 0 {
		return &ValidationError{Field: "calories", Message: "must not be negative"}
	}
	return ValidateDate(e.Date, today)
}
