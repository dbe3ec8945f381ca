// internal/nutrition/pipeline.go
package nutrition

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"food-tracker/internal/models"
)

const (
	unknownItemName     = "Unknown"
	fallbackDescription = "Could not fetch nutrition data"
)

// ExtractItems normalizes the provider items of a successful response.
// A nil or failed response yields no items.
func ExtractItems(resp *Response) []models.FoodItem {
	if resp == nil || !resp.Success {
		return nil
	}

	items := make([]models.FoodItem, 0, len(resp.Items))
	for _, raw := range resp.Items {
		name := unknownItemName
		if raw.Name != nil {
			name = *raw.Name
		}
		items = append(items, models.FoodItem{
			Name:                name,
			Calories:            orZero(raw.Calories),
			ServingSizeG:        orZero(raw.ServingSizeG),
			ProteinG:            orZero(raw.ProteinG),
			CarbohydratesTotalG: orZero(raw.CarbohydratesTotalG),
			FatTotalG:           orZero(raw.FatTotalG),
			SugarG:              orZero(raw.SugarG),
			FiberG:              orZero(raw.FiberG),
			SodiumMg:            orZero(raw.SodiumMg),
			PotassiumMg:         orZero(raw.PotassiumMg),
			CholesterolMg:       orZero(raw.CholesterolMg),
			SaturatedFatG:       orZero(raw.FatSaturatedG),
		})
	}
	return items
}

// Aggregate sums every nutrient across items.
func Aggregate(items []models.FoodItem) models.NutrientTotals {
	var totals models.NutrientTotals
	for _, item := range items {
		totals.AddItem(item)
	}
	return totals
}

// FormatForPersistence builds a draft entry from a lookup response. When no
// items were recognized, including a failed lookup, the draft falls back to
// the raw query with zero calories and no nutrient detail.
func FormatForPersistence(query string, resp *Response) models.Draft {
	items := ExtractItems(resp)
	if len(items) == 0 {
		return models.Draft{
			Name:        models.TruncateName(query),
			Description: fallbackDescription,
			Calories:    0,
		}
	}

	caser := cases.Title(language.English)
	names := make([]string, 0, len(items))
	lines := make([]string, 0, len(items))
	for _, item := range items {
		title := caser.String(item.Name)
		names = append(names, title)
		lines = append(lines, fmt.Sprintf("%s: %s cal, %sg protein, %sg carbs, %sg fat",
			title,
			formatAmount(item.Calories),
			formatAmount(item.ProteinG),
			formatAmount(item.CarbohydratesTotalG),
			formatAmount(item.FatTotalG),
		))
	}

	totals := Aggregate(items)
	return models.Draft{
		Name:            strings.Join(names, " + "),
		Description:     strings.Join(lines, "\n"),
		Calories:        roundTenth(totals.Calories),
		NutritionDetail: &totals,
		Items:           items,
	}
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// formatAmount prints whole numbers with one decimal ("300.0") and keeps the
// shortest exact form otherwise ("12.35").
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
