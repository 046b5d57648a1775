package engine

import (
	"context"
	"errors"
	"fmt"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
)

// classification is the duplicate judge's verdict on a new transaction.
type classification int

const (
	classNew classification = iota
	classProbableDuplicate
	classExactDuplicate
)

// classify judges tx against persisted history. Similarity is the
// primary signal: an identical fingerprint with similar records present
// is still routed through the pending path, preserving user control.
// Exact duplication is checked only after the similarity count resolves
// to zero.
func (e *Engine) classify(ctx context.Context, tx model.Transaction) (classification, int, error) {
	since := tx.DetectedAt.Add(-e.cfg.SimilarityWindow)

	similar, err := e.store.CountSimilar(ctx, tx.Amount, tx.Direction, since)
	if err != nil {
		return classNew, 0, fmt.Errorf("similarity scan failed: %w", err)
	}
	if similar > 0 {
		return classProbableDuplicate, similar, nil
	}

	_, err = e.store.GetConfirmed(ctx, tx.Fingerprint)
	switch {
	case err == nil:
		return classExactDuplicate, 0, nil
	case errors.Is(err, common.ErrNotFound):
		return classNew, 0, nil
	default:
		return classNew, 0, fmt.Errorf("exact duplicate check failed: %w", err)
	}
}
