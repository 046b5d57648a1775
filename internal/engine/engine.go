// Package engine implements the ingestion orchestrator: it turns raw
// detection events into saved, pending or queued transactions and
// resolves asynchronous user decisions against them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/parser"
	"ledgerbuddy/internal/service"
)

// Engine orchestrates detection ingestion and decision resolution.
type Engine struct {
	store     service.Store
	prompter  service.ConfirmationPrompter
	sync      service.SyncTrigger
	locks     *lockMap
	recent    *replaySuppressor
	decisions chan model.DecisionEvent
	cancel    context.CancelFunc
	cfg       Config
	state     lifecycle
}

// Config holds configuration options for the engine.
type Config struct {
	// Now supplies the detection clock; tests override it.
	Now func() time.Time
	// SimilarityWindow is the trailing window for the duplicate scan.
	SimilarityWindow time.Duration
	// ReplayTTL is the horizon for dropping re-posted notifications.
	ReplayTTL time.Duration
	// DecisionBuffer is the capacity of the decision event channel.
	DecisionBuffer int
	// FilterSources gates detections to financial source apps.
	FilterSources bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Now:              time.Now,
		SimilarityWindow: 24 * time.Hour,
		ReplayTTL:        10 * time.Second,
		DecisionBuffer:   64,
		FilterSources:    true,
	}
}

// New creates an engine with the default configuration. The prompter and
// sync trigger may be nil; confirmation requests and drain kicks are then
// skipped.
func New(store service.Store, prompter service.ConfirmationPrompter, sync service.SyncTrigger) *Engine {
	return NewWithConfig(store, prompter, sync, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(store service.Store, prompter service.ConfirmationPrompter, sync service.SyncTrigger, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if cfg.SimilarityWindow <= 0 {
		cfg.SimilarityWindow = def.SimilarityWindow
	}
	if cfg.ReplayTTL <= 0 {
		cfg.ReplayTTL = def.ReplayTTL
	}
	if cfg.DecisionBuffer <= 0 {
		cfg.DecisionBuffer = def.DecisionBuffer
	}

	return &Engine{
		store:    store,
		prompter: prompter,
		sync:     sync,
		locks:    newLockMap(),
		recent:   newReplaySuppressor(cfg.ReplayTTL),
		cfg:      cfg,
	}
}

// ProcessDetection runs one detection event through the pipeline:
// gate, parse, fingerprint, duplicate judgment, then either a direct
// save or the pending-confirmation path.
func (e *Engine) ProcessDetection(ctx context.Context, ev model.DetectionEvent) (DetectionResult, error) {
	now := e.cfg.Now()

	if reason, ok := e.admit(ev); !ok {
		slog.Debug("Ignoring detection", "source", ev.SourceApp, "reason", reason)
		return DetectionResult{Status: DetectionIgnored, Reason: reason}, nil
	}

	replayKey := ev.SourceApp + "|" + ev.Title + "|" + ev.Body
	if !e.recent.Observe(replayKey, now) {
		return DetectionResult{Status: DetectionIgnored, Reason: "recently processed"}, nil
	}

	tx, err := parser.Parse(ev.Text())
	if errors.Is(err, parser.ErrUnparseable) {
		return e.queueUnparsed(ctx, ev, now, err)
	}
	if err != nil {
		return DetectionResult{}, fmt.Errorf("parse failed: %w", err)
	}

	tx.SourceApp = ev.SourceApp
	tx.DetectedAt = now
	tx.Fingerprint = model.Fingerprint(ev.SourceApp, ev.Title, ev.Body, now)

	unlock := e.locks.Lock(tx.Fingerprint)
	defer unlock()

	class, similar, err := e.classify(ctx, tx)
	if err != nil {
		return DetectionResult{}, err
	}

	switch class {
	case classProbableDuplicate:
		return e.holdForConfirmation(ctx, tx, similar)
	case classExactDuplicate:
		slog.Debug("Exact duplicate detection replayed", "fingerprint", tx.Fingerprint)
		return DetectionResult{
			Status:      DetectionIgnored,
			Fingerprint: tx.Fingerprint,
			Reason:      "exact duplicate",
		}, nil
	default:
		return e.saveDirectly(ctx, tx)
	}
}

// admit applies the source gate ahead of parsing.
func (e *Engine) admit(ev model.DetectionEvent) (string, bool) {
	if ev.Title == "" && ev.Body == "" {
		return "empty notification", false
	}
	if isOwnNotification(ev.Title, ev.Body) {
		return "own confirmation notification", false
	}
	if e.cfg.FilterSources && !IsFinancialSource(ev.SourceApp) {
		return "not a financial source", false
	}
	return "", true
}

func (e *Engine) queueUnparsed(ctx context.Context, ev model.DetectionEvent, now time.Time, parseErr error) (DetectionResult, error) {
	slog.Debug("Queueing unparseable detection",
		"source", ev.SourceApp,
		"error", parseErr)

	det := model.UnparsedDetection{
		SourceApp: ev.SourceApp,
		Title:     ev.Title,
		Body:      ev.Body,
		Timestamp: now.UnixMilli(),
	}
	if err := e.store.QueueUnparsed(ctx, det); err != nil {
		return DetectionResult{}, fmt.Errorf("failed to queue unparsed detection: %w", err)
	}
	return DetectionResult{Status: DetectionQueued, Reason: parseErr.Error()}, nil
}

func (e *Engine) holdForConfirmation(ctx context.Context, tx model.Transaction, similar int) (DetectionResult, error) {
	rec := model.NewRecord(tx)
	if err := e.store.SavePending(ctx, rec); err != nil {
		return DetectionResult{}, fmt.Errorf("failed to save pending record: %w", err)
	}

	slog.Info("Holding probable duplicate for confirmation",
		"fingerprint", tx.Fingerprint,
		"amount", tx.Amount,
		"direction", tx.Direction,
		"similar_count", similar)

	e.requestConfirmation(ctx, rec, similar)

	return DetectionResult{
		Record:       &rec,
		Status:       DetectionPending,
		Fingerprint:  tx.Fingerprint,
		SimilarCount: similar,
	}, nil
}

// requestConfirmation notifies the interactive collaborator. The request
// is fire-and-forget: a failure is logged, and the still-pending record
// will be re-offered on the next startup.
func (e *Engine) requestConfirmation(ctx context.Context, rec model.Record, similar int) {
	if e.prompter == nil {
		return
	}

	req := service.ConfirmationRequest{
		Fingerprint:  rec.Fingerprint,
		Amount:       rec.Amount,
		Direction:    rec.Direction,
		Category:     rec.Category,
		SimilarCount: similar,
		Note:         rec.Note,
	}
	if err := e.prompter.RequestConfirmation(ctx, req); err != nil {
		slog.Warn("Confirmation request failed",
			"fingerprint", rec.Fingerprint,
			"error", err)
	}
}

func (e *Engine) saveDirectly(ctx context.Context, tx model.Transaction) (DetectionResult, error) {
	rec := model.NewRecord(tx)
	if err := e.store.SaveConfirmed(ctx, rec); err != nil {
		return DetectionResult{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.Info("Transaction saved",
		"fingerprint", rec.Fingerprint,
		"amount", rec.Amount,
		"direction", rec.Direction,
		"category", rec.Category)

	e.triggerSync()

	return DetectionResult{
		Record:      &rec,
		Status:      DetectionSaved,
		Fingerprint: rec.Fingerprint,
	}, nil
}

func (e *Engine) triggerSync() {
	if e.sync != nil {
		e.sync.TriggerSync()
	}
}
