package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: pending, confirmed and outbox collections",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS pending_transactions (
					fingerprint TEXT PRIMARY KEY,
					amount REAL NOT NULL,
					direction TEXT NOT NULL,
					category TEXT NOT NULL,
					icon INTEGER NOT NULL,
					note TEXT,
					source TEXT,
					timestamp INTEGER NOT NULL,
					date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_pending_similarity ON pending_transactions(amount, direction, timestamp)`,

				`CREATE TABLE IF NOT EXISTS confirmed_transactions (
					fingerprint TEXT PRIMARY KEY,
					amount REAL NOT NULL,
					direction TEXT NOT NULL,
					category TEXT NOT NULL,
					icon INTEGER NOT NULL,
					note TEXT,
					source TEXT,
					timestamp INTEGER NOT NULL,
					date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_confirmed_similarity ON confirmed_transactions(amount, direction, timestamp)`,

				// The outbox mirrors the full record so an orphan entry
				// (crash before the confirmed row landed) is still
				// deliverable on its own.
				`CREATE TABLE IF NOT EXISTS outbox (
					fingerprint TEXT PRIMARY KEY,
					amount REAL NOT NULL,
					direction TEXT NOT NULL,
					category TEXT NOT NULL,
					icon INTEGER NOT NULL,
					note TEXT,
					source TEXT,
					timestamp INTEGER NOT NULL,
					date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_outbox_created ON outbox(created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add unparsed detection queue",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS unparsed_queue (
					id TEXT PRIMARY KEY,
					source TEXT NOT NULL,
					title TEXT,
					body TEXT,
					timestamp INTEGER NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
