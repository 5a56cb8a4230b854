package testutil

import (
	"testing"

	"intake-go/internal/store"
	"intake-go/internal/tracker"
)

// NewTestStore creates an in-memory store that is closed when the test completes.
func NewTestStore(t *testing.T) tracker.Store {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewTestSQLiteStore creates a migrated in-memory SQLite store that is
// closed when the test completes.
func NewTestSQLiteStore(t *testing.T) tracker.Store {
	t.Helper()

	s, err := store.NewSQLiteStore()
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
