// internal/stats/stats.go
package stats

import (
	"math"
	"sort"
	"time"

	"food-tracker/internal/models"
)

// WeekDays is the length of the weekly window.
const WeekDays = 7

const labelLayout = "01/02"

type DayCount struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

type MealTypeCount struct {
	MealCategory models.MealCategory `json:"meal_type"`
	Label        string              `json:"label"`
	Count        int                 `json:"count"`
}

// Statistics summarizes a set of entries. Range and MostFrequent are nil when
// there are no entries.
type Statistics struct {
	TotalEntries  int                  `json:"total_entries"`
	AveragePerDay float64              `json:"average_per_day"`
	RangeStart    *time.Time           `json:"range_start"`
	RangeEnd      *time.Time           `json:"range_end"`
	MostFrequent  *models.MealCategory `json:"most_frequent_meal_type"`
}

// WeeklyDailyCounts counts entries for each of the seven days ending at
// anchor, oldest first.
func WeeklyDailyCounts(entries []*models.FoodLogEntry, anchor time.Time) []DayCount {
	end := models.DateOf(anchor)
	byDay := make(map[time.Time]int, len(entries))
	for _, e := range entries {
		byDay[models.DateOf(e.Date)]++
	}

	counts := make([]DayCount, 0, WeekDays)
	for i := WeekDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		counts = append(counts, DayCount{
			Date:  day,
			Label: day.Format(labelLayout),
			Count: byDay[day],
		})
	}
	return counts
}

// MealTypeDistribution groups entries by meal category, most common first.
// Equal counts keep the breakfast, lunch, dinner, snack order.
func MealTypeDistribution(entries []*models.FoodLogEntry) []MealTypeCount {
	counts := MealCounts(entries)

	dist := make([]MealTypeCount, 0, len(models.MealCategories))
	for _, c := range models.MealCategories {
		if counts[c] == 0 {
			continue
		}
		dist = append(dist, MealTypeCount{MealCategory: c, Label: c.Label(), Count: counts[c]})
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Count > dist[j].Count
	})
	return dist
}

// Compute derives the summary statistics of entries.
func Compute(entries []*models.FoodLogEntry) Statistics {
	if len(entries) == 0 {
		return Statistics{}
	}

	first := models.DateOf(entries[0].Date)
	last := first
	for _, e := range entries[1:] {
		d := models.DateOf(e.Date)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	days := int(last.Sub(first).Hours()/24) + 1
	stats := Statistics{
		TotalEntries:  len(entries),
		AveragePerDay: roundTenth(float64(len(entries)) / float64(days)),
		RangeStart:    &first,
		RangeEnd:      &last,
	}
	if dist := MealTypeDistribution(entries); len(dist) > 0 {
		most := dist[0].MealCategory
		stats.MostFrequent = &most
	}
	return stats
}

// NutritionTotals sums the nutrient detail of entries. Calories come from
// each entry's effective calories, so calories-only entries still count.
func NutritionTotals(entries []*models.FoodLogEntry) models.NutrientTotals {
	var totals models.NutrientTotals
	for _, e := range entries {
		if e.NutritionDetail != nil {
			detail := *e.NutritionDetail
			detail.Calories = 0
			totals.Add(detail)
		}
		totals.Calories += e.EffectiveCalories()
	}
	return totals
}

// MealCounts counts entries per category. Every category is present.
func MealCounts(entries []*models.FoodLogEntry) map[models.MealCategory]int {
	counts := make(map[models.MealCategory]int, len(models.MealCategories))
	for _, c := range models.MealCategories {
		counts[c] = 0
	}
	for _, e := range entries {
		counts[e.MealCategory]++
	}
	return counts
}

// DailyTarget is a recommended daily amount for one nutrient.
type DailyTarget struct {
	Nutrient string
	Label    string
	Unit     string
	Amount   float64
	value    func(models.NutrientTotals) float64
}

// DailyTargets are the recommended daily values shown against today's totals.
var DailyTargets = []DailyTarget{
	{"protein_g", "Protein", "g", 50, func(t models.NutrientTotals) float64 { return t.ProteinG }},
	{"carbohydrates_total_g", "Carbs", "g", 275, func(t models.NutrientTotals) float64 { return t.CarbohydratesTotalG }},
	{"fat_total_g", "Fat", "g", 78, func(t models.NutrientTotals) float64 { return t.FatTotalG }},
	{"fiber_g", "Fiber", "g", 28, func(t models.NutrientTotals) float64 { return t.FiberG }},
	{"sodium_mg", "Sodium", "mg", 2300, func(t models.NutrientTotals) float64 { return t.SodiumMg }},
	{"potassium_mg", "Potassium", "mg", 3500, func(t models.NutrientTotals) float64 { return t.PotassiumMg }},
	{"cholesterol_mg", "Cholesterol", "mg", 300, func(t models.NutrientTotals) float64 { return t.CholesterolMg }},
}

type NutrientProgress struct {
	Nutrient string  `json:"nutrient"`
	Label    string  `json:"label"`
	Unit     string  `json:"unit"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`
	Percent  int     `json:"percent"`
}

// Percentage is current as a whole percent of target, capped at 100. A zero
// or negative target yields 0.
func Percentage(current, target float64) int {
	if target <= 0 || math.IsNaN(current) {
		return 0
	}
	p := math.RoundToEven(current / target * 100)
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}

// TargetProgress reports totals against DailyTargets, in target order.
func TargetProgress(totals models.NutrientTotals) []NutrientProgress {
	progress := make([]NutrientProgress, 0, len(DailyTargets))
	for _, t := range DailyTargets {
		current := t.value(totals)
		progress = append(progress, NutrientProgress{
			Nutrient: t.Nutrient,
			Label:    t.Label,
			Unit:     t.Unit,
			Current:  roundTenth(current),
			Target:   t.Amount,
			Percent:  Percentage(current, t.Amount),
		})
	}
	return progress
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
