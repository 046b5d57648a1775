package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
)

// Collection table names. Only these constants are ever interpolated
// into queries.
const (
	tablePending   = "pending_transactions"
	tableConfirmed = "confirmed_transactions"
	tableOutbox    = "outbox"
)

const recordColumns = "fingerprint, amount, direction, category, icon, note, source, timestamp, date"

// execer abstracts *sql.DB and *sql.Tx for the record helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insertRecord writes a record into the named collection. Re-adding an
// existing fingerprint is a no-op.
func insertRecord(ctx context.Context, db execer, table string, rec model.Record) error {
	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, recordColumns)
	_, err := db.ExecContext(ctx, query,
		rec.Fingerprint,
		rec.Amount,
		string(rec.Direction),
		string(rec.Category),
		rec.Icon,
		rec.Note,
		rec.Source,
		rec.Timestamp,
		rec.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func getRecord(ctx context.Context, db execer, table, fingerprint string) (*model.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE fingerprint = ?`, recordColumns, table)
	row := db.QueryRowContext(ctx, query, fingerprint)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s in %s", common.ErrNotFound, fingerprint, table)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.Record, error) {
	var rec model.Record
	var direction, category string

	err := row.Scan(
		&rec.Fingerprint,
		&rec.Amount,
		&direction,
		&category,
		&rec.Icon,
		&rec.Note,
		&rec.Source,
		&rec.Timestamp,
		&rec.Date,
	)
	if err != nil {
		return nil, err
	}

	rec.Direction = model.Direction(direction)
	rec.Category = model.Category(category)

	if !rec.Direction.Valid() || !rec.Category.Valid() || rec.Amount <= 0 {
		return nil, fmt.Errorf("%w: fingerprint %s", common.ErrCorruptRecord, rec.Fingerprint)
	}
	return &rec, nil
}

// listRecords enumerates a collection in insertion order. A row that
// fails to deserialize is skipped and reported once; it never aborts
// the whole scan.
func listRecords(ctx context.Context, db execer, table string) ([]model.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, rowid`, recordColumns, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			slog.Warn("Skipping corrupt record",
				"table", table,
				"error", scanErr)
			continue
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", table, err)
	}
	return records, nil
}

// SavePending stores a transaction awaiting user confirmation.
func (s *SQLiteStore) SavePending(ctx context.Context, rec model.Record) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(&rec); err != nil {
		return err
	}
	return insertRecord(ctx, s.db, tablePending, rec)
}

// GetPending retrieves a pending record by fingerprint.
func (s *SQLiteStore) GetPending(ctx context.Context, fingerprint string) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return nil, err
	}
	return getRecord(ctx, s.db, tablePending, fingerprint)
}

// DeletePending removes a pending record. Deleting a fingerprint that is
// no longer pending returns ErrNotFound so callers can distinguish an
// already-resolved decision.
func (s *SQLiteStore) DeletePending(ctx context.Context, fingerprint string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM pending_transactions WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to delete pending record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: pending %s", common.ErrNotFound, fingerprint)
	}
	return nil
}

// ListPending enumerates all pending records in insertion order.
func (s *SQLiteStore) ListPending(ctx context.Context) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listRecords(ctx, s.db, tablePending)
}

// SaveConfirmed stores a confirmed transaction together with its outbox
// mirror in a single database transaction, so a crash can never separate
// the two. The outbox row is written first.
func (s *SQLiteStore) SaveConfirmed(ctx context.Context, rec model.Record) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(&rec); err != nil {
		return err
	}

	return s.execInTx(ctx, func(tx *sql.Tx) error {
		if err := insertRecord(ctx, tx, tableOutbox, rec); err != nil {
			return err
		}
		return insertRecord(ctx, tx, tableConfirmed, rec)
	})
}

// GetConfirmed retrieves a confirmed record by fingerprint.
func (s *SQLiteStore) GetConfirmed(ctx context.Context, fingerprint string) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return nil, err
	}
	return getRecord(ctx, s.db, tableConfirmed, fingerprint)
}

// ConfirmPending atomically moves a record from the pending collection
// to confirmed plus outbox. A fingerprint with no pending record returns
// ErrNotFound, which makes repeated confirmations a no-op.
func (s *SQLiteStore) ConfirmPending(ctx context.Context, fingerprint string) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return nil, err
	}

	var confirmed *model.Record
	err := s.execInTx(ctx, func(tx *sql.Tx) error {
		rec, err := getRecord(ctx, tx, tablePending, fingerprint)
		if err != nil {
			return err
		}

		if err := insertRecord(ctx, tx, tableOutbox, *rec); err != nil {
			return err
		}
		if err := insertRecord(ctx, tx, tableConfirmed, *rec); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_transactions WHERE fingerprint = ?`, fingerprint); err != nil {
			return fmt.Errorf("failed to delete pending record: %w", err)
		}

		confirmed = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// CountSimilar reports how many confirmed-or-pending records share the
// given amount and direction with a detection timestamp at or after
// since. Pending records count toward similarity even though they are
// unconfirmed.
func (s *SQLiteStore) CountSimilar(ctx context.Context, amount float64, direction model.Direction, since time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(*) FROM (
			SELECT amount, direction, timestamp FROM confirmed_transactions
			UNION ALL
			SELECT amount, direction, timestamp FROM pending_transactions
		) WHERE amount = ? AND direction = ? AND timestamp >= ?`

	var count int
	err := s.db.QueryRowContext(ctx, query, amount, string(direction), since.UnixMilli()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count similar records: %w", err)
	}
	return count, nil
}

// ListOutbox enumerates undelivered records in insertion order.
func (s *SQLiteStore) ListOutbox(ctx context.Context) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listRecords(ctx, s.db, tableOutbox)
}

// DeleteOutbox removes a delivered record from the outbox. Removing a
// fingerprint that is already gone is a no-op.
func (s *SQLiteStore) DeleteOutbox(ctx context.Context, fingerprint string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("failed to delete outbox entry: %w", err)
	}
	return nil
}

// CountOutbox returns the number of undelivered records.
func (s *SQLiteStore) CountOutbox(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count outbox entries: %w", err)
	}
	return count, nil
}
