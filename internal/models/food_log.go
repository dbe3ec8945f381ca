// internal/models/food_log.go
package models

import (
	"time"
)

// FoodLogEntry is one logged meal or snack.
type FoodLogEntry struct {
	ID              string          `json:"id"`
	Owner           string          `json:"owner,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	MealCategory    MealCategory    `json:"meal_category"`
	Date            time.Time       `json:"date"`
	Calories        float64         `json:"calories"`
	NutritionDetail *NutrientTotals `json:"nutrition_detail,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EffectiveCalories prefers the structured nutrition detail over the flat
// calories field when both are present.
func (e *FoodLogEntry) EffectiveCalories() float64 {
	if e.NutritionDetail != nil {
		return e.NutritionDetail.Calories
	}
	return e.Calories
}

// NutrientTotals holds the fixed nutrient key set. The JSON keys match the
// provider's vocabulary so stored detail stays readable.
type NutrientTotals struct {
	ProteinG            float64 `json:"protein_g"`
	CarbohydratesTotalG float64 `json:"carbohydrates_total_g"`
	FatTotalG           float64 `json:"fat_total_g"`
	FiberG              float64 `json:"fiber_g"`
	SugarG              float64 `json:"sugar_g"`
	SodiumMg            float64 `json:"sodium_mg"`
	PotassiumMg         float64 `json:"potassium_mg"`
	CholesterolMg       float64 `json:"cholesterol_mg"`
	SaturatedFatG       float64 `json:"saturated_fat_g"`
	Calories            float64 `json:"calories"`
}

// AddItem accumulates one food item into the totals.
func (t *NutrientTotals) AddItem(item FoodItem) {
	t.ProteinG += item.ProteinG
	t.CarbohydratesTotalG += item.CarbohydratesTotalG
	t.FatTotalG += item.FatTotalG
	t.FiberG += item.FiberG
	t.SugarG += item.SugarG
	t.SodiumMg += item.SodiumMg
	t.PotassiumMg += item.PotassiumMg
	t.CholesterolMg += item.CholesterolMg
	t.SaturatedFatG += item.SaturatedFatG
	t.Calories += item.Calories
}

// Add accumulates another set of totals.
func (t *NutrientTotals) Add(o NutrientTotals) {
	t.ProteinG += o.ProteinG
	t.CarbohydratesTotalG += o.CarbohydratesTotalG
	t.FatTotalG += o.FatTotalG
	t.FiberG += o.FiberG
	t.SugarG += o.SugarG
	t.SodiumMg += o.SodiumMg
	t.PotassiumMg += o.PotassiumMg
	t.CholesterolMg += o.CholesterolMg
	t.SaturatedFatG += o.SaturatedFatG
	t.Calories += o.Calories
}

// FoodItem is one recognized food component of a lookup response.
// It is never persisted on its own.
type FoodItem struct {
	Name                string  `json:"name"`
	Calories            float64 `json:"calories"`
	ServingSizeG        float64 `json:"serving_size_g"`
	ProteinG            float64 `json:"protein_g"`
	CarbohydratesTotalG float64 `json:"carbohydrates_total_g"`
	FatTotalG           float64 `json:"fat_total_g"`
	SugarG              float64 `json:"sugar_g"`
	FiberG              float64 `json:"fiber_g"`
	SodiumMg            float64 `json:"sodium_mg"`
	PotassiumMg         float64 `json:"potassium_mg"`
	CholesterolMg       float64 `json:"cholesterol_mg"`
	SaturatedFatG       float64 `json:"saturated_fat_g"`
}

// Draft is a not-yet-persisted entry produced by the parsing pipeline.
type Draft struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Calories        float64         `json:"calories"`
	NutritionDetail *NutrientTotals `json:"nutrition_detail,omitempty"`
	Items           []FoodItem      `json:"items,omitempty"`
}

// LogFilter narrows a listing of entries. Zero values mean "no constraint".
type LogFilter struct {
	Owner        string
	StartDate    *time.Time
	EndDate      *time.Time
	MealCategory MealCategory
	Limit        int
}
