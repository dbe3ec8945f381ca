// cmd/food-tracker/print.go
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"food-tracker/internal/models"
	"food-tracker/internal/tracker"
)

func printEntry(e *models.FoodLogEntry) {
	fmt.Printf("%s  %s  %s  %s  %.1f cal\n",
		e.ID, e.Date.Format(models.DateLayout), e.MealCategory.Label(), e.Name, e.EffectiveCalories())
	if e.Description != "" {
		for _, line := range strings.Split(e.Description, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
}

func printEntries(entries []*models.FoodLogEntry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tMEAL\tNAME\tCALORIES")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n",
			e.ID, e.Date.Format(models.DateLayout), e.MealCategory.Label(), e.Name, e.EffectiveCalories())
	}
	w.Flush()
}

func printTotals(t models.NutrientTotals) {
	fmt.Printf("Calories: %.1f  Protein: %.1fg  Carbs: %.1fg  Fat: %.1fg\n",
		t.Calories, t.ProteinG, t.CarbohydratesTotalG, t.FatTotalG)
	fmt.Printf("Fiber: %.1fg  Sugar: %.1fg  Sodium: %.1fmg\n", t.FiberG, t.SugarG, t.SodiumMg)
}

func printToday(s *tracker.TodaySummary) {
	fmt.Printf("Today (%s)\n\n", s.Date.Format(models.DateLayout))
	if len(s.Entries) == 0 {
		fmt.Println("Nothing logged yet.")
	} else {
		printEntries(s.Entries)
	}

	fmt.Println()
	counts := make([]string, 0, len(models.MealCategories))
	for _, c := range models.MealCategories {
		counts = append(counts, fmt.Sprintf("%s: %d", c.Label(), s.MealCounts[c]))
	}
	fmt.Println(strings.Join(counts, "  "))
	printTotals(s.Totals)

	fmt.Println("\nDaily targets:")
	for _, p := range s.Progress {
		fmt.Printf("  %-12s %7.1f / %-7.0f %-2s %3d%%\n", p.Label, p.Current, p.Target, p.Unit, p.Percent)
	}
}

func printDashboard(d *tracker.Dashboard) {
	st := d.Statistics
	fmt.Printf("Total entries:   %d\n", st.TotalEntries)
	fmt.Printf("Average per day: %.1f\n", st.AveragePerDay)
	if st.RangeStart != nil && st.RangeEnd != nil {
		fmt.Printf("Date range:      %s to %s\n",
			st.RangeStart.Format(models.DateLayout), st.RangeEnd.Format(models.DateLayout))
	}
	if st.MostFrequent != nil {
		fmt.Printf("Most frequent:   %s\n", st.MostFrequent.Label())
	}

	if len(d.Distribution) > 0 {
		fmt.Println("\nBy meal type:")
		for _, m := range d.Distribution {
			fmt.Printf("  %-10s %d\n", m.Label, m.Count)
		}
	}

	fmt.Println("\nLast 7 days:")
	for _, day := range d.Weekly {
		fmt.Printf("  %s %s\n", day.Label, strings.Repeat("#", day.Count))
	}
}
