// internal/testutil/store.go
package testutil

import (
	"testing"

	"food-tracker/internal/storage"
)

// NewTestStore creates an in-memory store with the schema migrated.
// The store is closed when the test completes.
func NewTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	s, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
