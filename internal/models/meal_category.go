// internal/models/meal_category.go
package models

import "strings"

type MealCategory string

const (
	Breakfast MealCategory = "breakfast"
	Lunch     MealCategory = "lunch"
	Dinner    MealCategory = "dinner"
	Snack     MealCategory = "snack"
)

// MealCategories lists the closed set in display order.
var MealCategories = []MealCategory{Breakfast, Lunch, Dinner, Snack}

func (c MealCategory) Valid() bool {
	switch c {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// Label returns the human form, e.g. "Breakfast".
func (c MealCategory) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ParseMealCategory accepts any casing and defaults an empty value to snack.
func ParseMealCategory(s string) (MealCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Snack, nil
	}
	c := MealCategory(s)
	if !c.Valid() {
		return "", &ValidationError{Field: "meal_type", Message: "must be one of breakfast, lunch, dinner, snack"}
	}
	return c, nil
}
