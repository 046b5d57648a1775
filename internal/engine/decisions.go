package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
)

// ErrDecisionBufferFull is returned when a decision cannot be queued.
// The collaborator may retry; a dropped decision leaves the record
// pending, never in an inconsistent state.
var ErrDecisionBufferFull = errors.New("decision buffer full")

// ResolveDecision applies a user's Yes/No answer to a pending
// transaction. Both resolutions are idempotent: once a fingerprint has
// left the pending collection, a repeated decision reports Unknown and
// changes nothing.
func (e *Engine) ResolveDecision(ctx context.Context, ev model.DecisionEvent) (DecisionResult, error) {
	if ev.Fingerprint == "" {
		return DecisionResult{}, fmt.Errorf("decision event missing fingerprint")
	}

	unlock := e.locks.Lock(ev.Fingerprint)
	defer unlock()

	switch ev.Decision {
	case model.DecisionYes:
		return e.confirmPending(ctx, ev.Fingerprint)
	case model.DecisionNo:
		return e.discardPending(ctx, ev.Fingerprint)
	default:
		return DecisionResult{}, fmt.Errorf("unknown decision %q", ev.Decision)
	}
}

func (e *Engine) confirmPending(ctx context.Context, fingerprint string) (DecisionResult, error) {
	rec, err := e.store.ConfirmPending(ctx, fingerprint)
	if errors.Is(err, common.ErrNotFound) {
		slog.Info("Decision for unknown fingerprint, ignoring",
			"fingerprint", fingerprint,
			"decision", model.DecisionYes)
		return DecisionResult{Status: DecisionUnknown}, nil
	}
	if err != nil {
		return DecisionResult{}, fmt.Errorf("failed to confirm pending record: %w", err)
	}

	slog.Info("Pending transaction confirmed",
		"fingerprint", fingerprint,
		"amount", rec.Amount,
		"category", rec.Category)

	e.triggerSync()

	return DecisionResult{Record: rec, Status: DecisionSaved}, nil
}

func (e *Engine) discardPending(ctx context.Context, fingerprint string) (DecisionResult, error) {
	err := e.store.DeletePending(ctx, fingerprint)
	if errors.Is(err, common.ErrNotFound) {
		slog.Info("Decision for unknown fingerprint, ignoring",
			"fingerprint", fingerprint,
			"decision", model.DecisionNo)
		return DecisionResult{Status: DecisionUnknown}, nil
	}
	if err != nil {
		return DecisionResult{}, fmt.Errorf("failed to discard pending record: %w", err)
	}

	slog.Info("Pending transaction discarded", "fingerprint", fingerprint)

	return DecisionResult{Status: DecisionDiscarded}, nil
}

// SubmitDecision queues a decision event for the running engine's
// decision loop. It never blocks; when the buffer is full the decision
// is dropped with a warning and the collaborator may retry.
func (e *Engine) SubmitDecision(ev model.DecisionEvent) error {
	if e.State() != StateRunning {
		return fmt.Errorf("engine is not running")
	}

	select {
	case e.decisions <- ev:
		return nil
	default:
		slog.Warn("Decision buffer full, dropping decision",
			"fingerprint", ev.Fingerprint)
		return ErrDecisionBufferFull
	}
}

// decisionLoop is the single consumer of the decision channel.
func (e *Engine) decisionLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.decisions:
			if _, err := e.ResolveDecision(ctx, ev); err != nil {
				slog.Error("Failed to resolve decision",
					"fingerprint", ev.Fingerprint,
					"error", err)
			}
		}
	}
}
