// Package testutil provides test utilities shared across packages.
package testutil

import (
	"context"
	"testing"

	"ledgerbuddy/internal/storage"
)

// SetupTestStore creates an in-memory SQLite store with migrations
// applied and cleanup registered.
func SetupTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
