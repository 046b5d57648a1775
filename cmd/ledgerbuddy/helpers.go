package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/config"
	"ledgerbuddy/internal/service"
	"ledgerbuddy/internal/storage"
)

// databasePath resolves the configured database location.
func databasePath() (string, error) {
	dbPath := viper.GetString("database.path")
	if dbPath != "" {
		return config.ExpandPath(dbPath), nil
	}

	dbPath, err := config.DefaultDatabasePath()
	if err != nil {
		return "", fmt.Errorf("failed to determine database path: %w", err)
	}
	return dbPath, nil
}

// openStore opens the detection database and brings the schema up to
// date. Opening retries briefly so a concurrently running instance
// holding the write lock does not fail the command outright.
func openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}

	var store *storage.SQLiteStore
	err = common.WithRetry(ctx, func() error {
		var openErr error
		store, openErr = storage.NewSQLiteStore(dbPath)
		return openErr
	}, service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
	})
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("failed to open database %s", dbPath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("failed to migrate database", err)
	}
	return store, nil
}
