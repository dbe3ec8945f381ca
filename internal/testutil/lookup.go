// internal/testutil/lookup.go
package testutil

import (
	"context"
	"sync"

	"food-tracker/internal/nutrition"
)

// StubLookup answers nutrition queries from canned responses and records
// every query it receives.
type StubLookup struct {
	mu       sync.Mutex
	Response *nutrition.Response
	Err      error
	Queries  []string
}

// NewStubLookup returns a lookup that succeeds with items.
func NewStubLookup(items ...nutrition.RawItem) *StubLookup {
	return &StubLookup{Response: &nutrition.Response{Success: true, Items: items}}
}

// NewFailingLookup returns a lookup that fails with err.
func NewFailingLookup(err *nutrition.LookupError) *StubLookup {
	return &StubLookup{
		Response: &nutrition.Response{Success: false, Error: err.Error(), Message: err.Message},
		Err:      err,
	}
}

func (l *StubLookup) ParseFoodQuery(_ context.Context, query string) (*nutrition.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Queries = append(l.Queries, query)
	return l.Response, l.Err
}

// Calls returns how many lookups were made.
func (l *StubLookup) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Queries)
}

// Item builds a RawItem with the common fields set.
func Item(name string, calories, protein, carbs, fat float64) nutrition.RawItem {
	return nutrition.RawItem{
		Name:                &name,
		Calories:            &calories,
		ProteinG:            &protein,
		CarbohydratesTotalG: &carbs,
		FatTotalG:           &fat,
	}
}
