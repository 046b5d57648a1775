package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ledgerbuddy/internal/model"
)

// QueueUnparsed appends a detection the parser rejected to the
// best-effort review queue. The queue carries no dedup or expiry
// guarantee and is not part of the correctness contract.
func (s *SQLiteStore) QueueUnparsed(ctx context.Context, det model.UnparsedDetection) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if det.ID == "" {
		det.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO unparsed_queue (id, source, title, body, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		det.ID, det.SourceApp, det.Title, det.Body, det.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to queue unparsed detection: %w", err)
	}
	return nil
}

// ListUnparsed enumerates queued unparseable detections in insertion order.
func (s *SQLiteStore) ListUnparsed(ctx context.Context) ([]model.UnparsedDetection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, title, body, timestamp FROM unparsed_queue
		ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unparsed queue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var detections []model.UnparsedDetection
	for rows.Next() {
		var det model.UnparsedDetection
		if scanErr := rows.Scan(&det.ID, &det.SourceApp, &det.Title, &det.Body, &det.Timestamp); scanErr != nil {
			slog.Warn("Skipping corrupt unparsed entry", "error", scanErr)
			continue
		}
		detections = append(detections, det)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to enumerate unparsed queue: %w", err)
	}
	return detections, nil
}
