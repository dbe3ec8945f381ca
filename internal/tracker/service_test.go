package tracker_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-tracker/internal/logging"
	"food-tracker/internal/models"
	"food-tracker/internal/nutrition"
	"food-tracker/internal/storage"
	"food-tracker/internal/testutil"
	"food-tracker/internal/tracker"
)

type fixture struct {
	svc    *tracker.Service
	store  *storage.SQLiteStorage
	lookup *testutil.StubLookup
	clock  *testutil.StubClock
}

func newFixture(t *testing.T, lookup *testutil.StubLookup) *fixture {
	t.Helper()
	store := testutil.NewTestStore(t)
	clock := testutil.FixedClock()
	svc := tracker.NewService(store, lookup, logging.NewNopLogger(), clock, testutil.NewStubIDGenerator())
	return &fixture{svc: svc, store: store, lookup: lookup, clock: clock}
}

func countEntries(t *testing.T, s *storage.SQLiteStorage) int {
	t.Helper()
	entries, err := s.List(context.Background(), models.LogFilter{})
	require.NoError(t, err)
	return len(entries)
}

func TestLogNatural(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the aggregated draft", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup(
			testutil.Item("prime rib", 300, 20, 0, 25),
			testutil.Item("mashed potatoes", 150, 5, 30, 3),
		))

		got, err := f.svc.LogNatural(ctx, tracker.NaturalInput{
			Owner:        "alice",
			Query:        "  prime rib and mashed potatoes ",
			MealCategory: "Dinner",
			Date:         "2024-01-14",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"prime rib and mashed potatoes"}, f.lookup.Queries)
		assert.Equal(t, "id-1", got.Entry.ID)
		assert.Equal(t, "Prime Rib + Mashed Potatoes", got.Entry.Name)
		assert.Equal(t, models.Dinner, got.Entry.MealCategory)
		assert.Equal(t, 450.0, got.Entry.Calories)
		require.NotNil(t, got.Entry.NutritionDetail)
		assert.Equal(t, 25.0, got.Entry.NutritionDetail.ProteinG)
		assert.Len(t, got.Items, 2)

		stored, err := f.store.Get(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", stored.Owner)
		assert.Equal(t, "2024-01-14", stored.Date.Format(models.DateLayout))
		assert.Contains(t, stored.Description, "Prime Rib: 300.0 cal, 20.0g protein, 0.0g carbs, 25.0g fat")
	})

	t.Run("defaults to snack today", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup(testutil.Item("apple", 95, 0.5, 25, 0.3)))

		got, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "an apple"})
		require.NoError(t, err)
		assert.Equal(t, models.Snack, got.Entry.MealCategory)
		assert.Equal(t, "2024-01-15", got.Entry.Date.Format(models.DateLayout))
		assert.Empty(t, got.Entry.Owner)
	})

	t.Run("no recognized items stores the fallback", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())

		got, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "mystery stew"})
		require.NoError(t, err)
		assert.Equal(t, "mystery stew", got.Entry.Name)
		assert.Equal(t, "Could not fetch nutrition data", got.Entry.Description)
		assert.Zero(t, got.Entry.Calories)
		assert.Nil(t, got.Entry.NutritionDetail)
		assert.Empty(t, got.Items)
		assert.Equal(t, 1, countEntries(t, f.store))
	})

	t.Run("lookup failure stores nothing", func(t *testing.T) {
		lerr := &nutrition.LookupError{Kind: nutrition.KindTimeout, Message: "The request took too long. Please try again."}
		f := newFixture(t, testutil.NewFailingLookup(lerr))

		_, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "toast"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, nutrition.ErrTimeout))

		var got *nutrition.LookupError
		require.ErrorAs(t, err, &got)
		assert.Equal(t, "The request took too long. Please try again.", got.Message)
		assert.Zero(t, countEntries(t, f.store))
	})

	t.Run("empty query is rejected before lookup", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())

		_, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "   "})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Please describe what you ate.", verr.Message)
		assert.Zero(t, f.lookup.Calls())
	})

	t.Run("future date is rejected before lookup", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup(testutil.Item("toast", 80, 3, 15, 1)))

		_, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "toast", Date: "2024-01-16"})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date", verr.Field)
		assert.Zero(t, f.lookup.Calls())
		assert.Zero(t, countEntries(t, f.store))
	})

	t.Run("bad meal type", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())

		_, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "toast", MealCategory: "brunch"})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "meal_type", verr.Field)
	})

	t.Run("long joined name is truncated", func(t *testing.T) {
		items := make([]nutrition.RawItem, 0, 30)
		for i := 0; i < 30; i++ {
			items = append(items, testutil.Item("grilled cheese", 10, 1, 1, 1))
		}
		f := newFixture(t, testutil.NewStubLookup(items...))

		got, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "lots of sandwiches"})
		require.NoError(t, err)
		assert.Len(t, []rune(got.Entry.Name), models.MaxNameLength)
	})
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewStubLookup(testutil.Item("egg", 78, 6, 0.6, 5)))

	draft, err := f.svc.Preview(ctx, "one egg")
	require.NoError(t, err)
	assert.Equal(t, "Egg", draft.Name)
	assert.Equal(t, 78.0, draft.Calories)
	assert.Zero(t, countEntries(t, f.store), "preview must not persist")
}

func TestLogManual(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     tracker.ManualInput
		wantField string
	}{
		{name: "valid", input: tracker.ManualInput{Name: "Oatmeal", MealCategory: "breakfast", Calories: 150}},
		{name: "missing name", input: tracker.ManualInput{Name: "  "}, wantField: "name"},
		{name: "name too long", input: tracker.ManualInput{Name: strings.Repeat("a", 201)}, wantField: "name"},
		{name: "negative calories", input: tracker.ManualInput{Name: "Oatmeal", Calories: -1}, wantField: "calories"},
		{name: "NaN calories", input: tracker.ManualInput{Name: "Oatmeal", Calories: math.NaN()}, wantField: "calories"},
		{name: "future date", input: tracker.ManualInput{Name: "Oatmeal", Date: "2024-02-01"}, wantField: "date"},
		{name: "malformed date", input: tracker.ManualInput{Name: "Oatmeal", Date: "01/15/2024"}, wantField: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testutil.NewStubLookup())

			got, err := f.svc.LogManual(ctx, tt.input)
			if tt.wantField != "" {
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Zero(t, countEntries(t, f.store))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "id-1", got.ID)
			assert.Equal(t, models.Breakfast, got.MealCategory)
			assert.Nil(t, got.NutritionDetail)
			assert.Equal(t, 1, countEntries(t, f.store))
		})
	}
}

func TestEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps nutrient detail when none is given", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup(testutil.Item("steak", 500, 40, 0, 35)))
		logged, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Query: "steak", MealCategory: "dinner"})
		require.NoError(t, err)

		f.clock.Advance(time.Hour)
		got, err := f.svc.Edit(ctx, tracker.EditInput{
			ID:           logged.Entry.ID,
			Name:         ptr("Ribeye"),
			MealCategory: ptr("lunch"),
			Date:         ptr("2024-01-13"),
			Calories:     ptr(520.0),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ribeye", got.Name)
		assert.Equal(t, models.Lunch, got.MealCategory)
		require.NotNil(t, got.NutritionDetail)
		assert.Equal(t, 40.0, got.NutritionDetail.ProteinG)
		assert.True(t, got.UpdatedAt.After(logged.Entry.UpdatedAt))

		stored, err := f.svc.Get(ctx, logged.Entry.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.NutritionDetail)
		assert.Equal(t, "2024-01-13", stored.Date.Format(models.DateLayout))
	})

	t.Run("explicit nutrient detail replaces the old one", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())
		entry, err := f.svc.LogManual(ctx, tracker.ManualInput{Name: "Salad", Calories: 120})
		require.NoError(t, err)

		got, err := f.svc.Edit(ctx, tracker.EditInput{
			ID:        entry.ID,
			Nutrition: &models.NutrientTotals{FiberG: 4, Calories: 130},
		})
		require.NoError(t, err)
		require.NotNil(t, got.NutritionDetail)
		assert.Equal(t, 130.0, got.EffectiveCalories())
	})

	t.Run("omitted fields keep their stored values", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())
		entry, err := f.svc.LogManual(ctx, tracker.ManualInput{
			Name:         "Omelette",
			Description:  "two eggs",
			MealCategory: "breakfast",
			Date:         "2024-01-10",
			Calories:     300,
		})
		require.NoError(t, err)

		got, err := f.svc.Edit(ctx, tracker.EditInput{ID: entry.ID, Name: ptr("Cheese Omelette")})
		require.NoError(t, err)
		assert.Equal(t, "Cheese Omelette", got.Name)
		assert.Equal(t, "two eggs", got.Description)
		assert.Equal(t, models.Breakfast, got.MealCategory)
		assert.Equal(t, "2024-01-10", got.Date.Format(models.DateLayout))
		assert.Equal(t, 300.0, got.Calories)
	})

	t.Run("bad meal type is rejected before loading", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())
		_, err := f.svc.Edit(ctx, tracker.EditInput{ID: "missing", MealCategory: ptr("brunch")})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "meal_type", verr.Field)
	})

	t.Run("invalid edit leaves the entry unchanged", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())
		entry, err := f.svc.LogManual(ctx, tracker.ManualInput{Name: "Salad"})
		require.NoError(t, err)

		_, err = f.svc.Edit(ctx, tracker.EditInput{ID: entry.ID, Name: ptr("")})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)

		stored, err := f.svc.Get(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "Salad", stored.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t, testutil.NewStubLookup())
		_, err := f.svc.Edit(ctx, tracker.EditInput{ID: "missing", Name: ptr("x")})
		assert.ErrorIs(t, err, tracker.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewStubLookup())
	entry, err := f.svc.LogManual(ctx, tracker.ManualInput{Name: "Cookie"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, entry.ID))
	assert.Zero(t, countEntries(t, f.store))
	assert.ErrorIs(t, f.svc.Delete(ctx, entry.ID), tracker.ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewStubLookup())

	for _, in := range []tracker.ManualInput{
		{Owner: "alice", Name: "Eggs", MealCategory: "breakfast", Date: "2024-01-10"},
		{Owner: "alice", Name: "Soup", MealCategory: "lunch", Date: "2024-01-14"},
		{Owner: "bob", Name: "Pizza", MealCategory: "dinner", Date: "2024-01-14"},
	} {
		_, err := f.svc.LogManual(ctx, in)
		require.NoError(t, err)
	}

	t.Run("owner and range", func(t *testing.T) {
		got, err := f.svc.List(ctx, tracker.ListInput{Owner: "alice", StartDate: "2024-01-12"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Soup", got[0].Name)
	})

	t.Run("no matches is an empty slice", func(t *testing.T) {
		got, err := f.svc.List(ctx, tracker.ListInput{Owner: "carol"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("bad filter", func(t *testing.T) {
		_, err := f.svc.List(ctx, tracker.ListInput{EndDate: "yesterday"})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "end_date", verr.Field)
	})
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewStubLookup(testutil.Item("bagel", 250, 10, 48, 1.5)))

	_, err := f.svc.LogNatural(ctx, tracker.NaturalInput{Owner: "alice", Query: "bagel", MealCategory: "breakfast"})
	require.NoError(t, err)
	_, err = f.svc.LogManual(ctx, tracker.ManualInput{Owner: "alice", Name: "Coffee", MealCategory: "breakfast", Calories: 5})
	require.NoError(t, err)
	_, err = f.svc.LogManual(ctx, tracker.ManualInput{Owner: "alice", Name: "Leftovers", Date: "2024-01-14", Calories: 400})
	require.NoError(t, err)

	got, err := f.svc.Today(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got.Date.Format(models.DateLayout))
	assert.Len(t, got.Entries, 2)
	assert.Equal(t, 2, got.MealCounts[models.Breakfast])
	assert.Equal(t, 0, got.MealCounts[models.Dinner])
	assert.Equal(t, 255.0, got.Totals.Calories)
	assert.Equal(t, 10.0, got.Totals.ProteinG)

	require.NotEmpty(t, got.Progress)
	assert.Equal(t, "protein_g", got.Progress[0].Nutrient)
	assert.Equal(t, 20, got.Progress[0].Percent)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewStubLookup())

	for _, in := range []tracker.ManualInput{
		{Owner: "alice", Name: "A", MealCategory: "lunch", Date: "2024-01-01"},
		{Owner: "alice", Name: "B", MealCategory: "lunch", Date: "2024-01-13"},
		{Owner: "alice", Name: "C", MealCategory: "dinner", Date: "2024-01-15"},
		{Owner: "bob", Name: "D", MealCategory: "snack", Date: "2024-01-15"},
	} {
		_, err := f.svc.LogManual(ctx, in)
		require.NoError(t, err)
	}

	t.Run("all of the owner's entries", func(t *testing.T) {
		got, err := f.svc.Dashboard(ctx, tracker.DashboardInput{Owner: "alice"})
		require.NoError(t, err)

		assert.Equal(t, 3, got.Statistics.TotalEntries)
		// 3 entries over 15 days
		assert.Equal(t, 0.2, got.Statistics.AveragePerDay)
		require.NotNil(t, got.Statistics.MostFrequent)
		assert.Equal(t, models.Lunch, *got.Statistics.MostFrequent)
		require.Len(t, got.Distribution, 2)

		require.Len(t, got.Weekly, 7)
		assert.Equal(t, "01/09", got.Weekly[0].Label)
		assert.Equal(t, 1, got.Weekly[4].Count)
		assert.Equal(t, 1, got.Weekly[6].Count)
	})

	t.Run("filtered statistics keep the full week", func(t *testing.T) {
		got, err := f.svc.Dashboard(ctx, tracker.DashboardInput{Owner: "alice", MealCategory: "dinner"})
		require.NoError(t, err)

		assert.Equal(t, 1, got.Statistics.TotalEntries)
		total := 0
		for _, d := range got.Weekly {
			total += d.Count
		}
		assert.Equal(t, 2, total)
	})

	t.Run("no entries", func(t *testing.T) {
		got, err := f.svc.Dashboard(ctx, tracker.DashboardInput{Owner: "carol"})
		require.NoError(t, err)
		assert.Zero(t, got.Statistics.TotalEntries)
		assert.Nil(t, got.Statistics.MostFrequent)
		assert.Empty(t, got.Distribution)
		assert.Len(t, got.Weekly, 7)
	})
}

func ptr[T any](v T) *T { return &v }
