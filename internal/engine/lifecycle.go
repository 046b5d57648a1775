package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ledgerbuddy/internal/model"
)

// State is the engine's lifecycle state, transitioned only through
// Start and Stop.
type State string

// Lifecycle states.
const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

type lifecycle struct {
	current State
	wg      sync.WaitGroup
	mu      sync.RWMutex
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	if e.state.current == "" {
		return StateStopped
	}
	return e.state.current
}

func (e *Engine) transition(from, to State) error {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()

	current := e.state.current
	if current == "" {
		current = StateStopped
	}
	if current != from {
		return fmt.Errorf("invalid lifecycle transition: engine is %s, expected %s", current, from)
	}
	e.state.current = to
	return nil
}

func (e *Engine) setState(s State) {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	e.state.current = s
}

// Start launches the decision loop and re-offers any still-pending
// records for confirmation. It transitions Stopped -> Starting ->
// Running.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.transition(StateStopped, StateStarting); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.decisions = make(chan model.DecisionEvent, e.cfg.DecisionBuffer)

	// Pending records must survive a host crash; re-offering them here
	// is the only user-visible recovery path.
	if err := e.repromptPending(runCtx); err != nil {
		slog.Warn("Failed to re-offer pending confirmations", "error", err)
	}

	e.state.wg.Add(1)
	go func() {
		defer e.state.wg.Done()
		e.decisionLoop(runCtx)
	}()

	e.setState(StateRunning)
	slog.Info("Engine started")
	return nil
}

// Stop halts the decision loop and waits for it to drain. It
// transitions Running -> Stopping -> Stopped.
func (e *Engine) Stop() error {
	if err := e.transition(StateRunning, StateStopping); err != nil {
		return err
	}

	e.cancel()
	e.state.wg.Wait()

	e.setState(StateStopped)
	slog.Info("Engine stopped")
	return nil
}

// repromptPending re-offers every pending record to the confirmation
// collaborator. The similarity count is recomputed from the current
// window, excluding the pending record itself.
func (e *Engine) repromptPending(ctx context.Context) error {
	if e.prompter == nil {
		return nil
	}

	pending, err := e.store.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	slog.Info("Re-offering pending confirmations", "count", len(pending))

	for _, rec := range pending {
		since := rec.DetectedAt().Add(-e.cfg.SimilarityWindow)
		similar, countErr := e.store.CountSimilar(ctx, rec.Amount, rec.Direction, since)
		if countErr != nil {
			slog.Warn("Failed to recompute similarity for pending record",
				"fingerprint", rec.Fingerprint,
				"error", countErr)
			similar = 1
		} else if similar > 0 {
			// The scan counts the pending record itself.
			similar--
		}

		e.requestConfirmation(ctx, rec, similar)
	}
	return nil
}
