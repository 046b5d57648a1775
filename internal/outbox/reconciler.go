// Package outbox implements eventual delivery of confirmed transactions
// to the downstream consumer.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/service"
)

// Config holds tuning for the reconciler.
type Config struct {
	// AttemptTimeout bounds each delivery attempt.
	AttemptTimeout time.Duration
	// Cooldown suppresses drains after the consumer was observed
	// unreachable, so repeated triggers don't busy-loop against a dead
	// endpoint.
	Cooldown time.Duration
	// Pace is the delay between consecutive deliveries in one drain.
	Pace time.Duration
	// Interval is the background drain period.
	Interval time.Duration
}

// DefaultConfig returns the default reconciler configuration.
func DefaultConfig() Config {
	return Config{
		AttemptTimeout: 5 * time.Second,
		Cooldown:       30 * time.Second,
		Pace:           100 * time.Millisecond,
		Interval:       time.Minute,
	}
}

// Reconciler drains the durable outbox to the downstream consumer,
// removing entries only on acknowledged delivery. It communicates with
// the ingestion path exclusively through the store, so draining never
// blocks ingestion.
type Reconciler struct {
	store       service.Store
	source      service.ConsumerSource
	notifyCh    chan struct{}
	lastFailure time.Time
	cfg         Config
	mu          sync.Mutex
}

// New creates a reconciler with the default configuration.
func New(store service.Store, source service.ConsumerSource) *Reconciler {
	return NewWithConfig(store, source, DefaultConfig())
}

// NewWithConfig creates a reconciler with custom configuration.
func NewWithConfig(store service.Store, source service.ConsumerSource, cfg Config) *Reconciler {
	def := DefaultConfig()
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}

	return &Reconciler{
		store:    store,
		source:   source,
		cfg:      cfg,
		notifyCh: make(chan struct{}, 1),
	}
}

// TriggerSync requests an opportunistic drain. It never blocks; a drain
// request that is already queued absorbs further triggers.
func (r *Reconciler) TriggerSync() {
	select {
	case r.notifyCh <- struct{}{}:
	default:
	}
}

// Run drains the outbox on a timer and whenever TriggerSync fires,
// until the context is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.notifyCh:
		}

		if _, err := r.DrainActive(ctx); err != nil {
			slog.Error("Outbox drain failed", "error", err)
		}
	}
}

// DrainActive drains to the currently attached consumer. With no
// consumer attached, records stay in the outbox and no error is
// reported; that is the normal steady state.
func (r *Reconciler) DrainActive(ctx context.Context) (int, error) {
	c := r.source.Active()
	if c == nil {
		slog.Debug("No consumer attached, leaving outbox intact")
		return 0, nil
	}
	return r.Drain(ctx, c)
}

// Drain attempts to deliver every outbox entry to c, removing each entry
// only after the consumer acknowledges it. A consumer failure stops the
// pass and leaves the remaining entries in place for the next cycle;
// only storage failures are returned as errors.
func (r *Reconciler) Drain(ctx context.Context, c service.Consumer) (int, error) {
	if r.inCooldown() {
		slog.Debug("Consumer recently unreachable, skipping drain")
		return 0, nil
	}

	entries, err := r.store.ListOutbox(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	slog.Info("Draining outbox", "entries", len(entries))

	delivered := 0
	for _, rec := range entries {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		if err := r.deliverOne(ctx, c, rec); err != nil {
			// Cooldown applies only when the consumer looks unreachable;
			// any other failure is worth retrying on the next cycle.
			if common.IsRetryable(err) {
				r.markUnreachable()
			}
			slog.Info("Consumer did not acknowledge, leaving entry in outbox",
				"fingerprint", rec.Fingerprint,
				"delivered", delivered,
				"error", err)
			return delivered, nil
		}

		if err := r.store.DeleteOutbox(ctx, rec.Fingerprint); err != nil {
			return delivered, fmt.Errorf("failed to remove delivered entry: %w", err)
		}
		delivered++

		if r.cfg.Pace > 0 {
			select {
			case <-ctx.Done():
				return delivered, ctx.Err()
			case <-time.After(r.cfg.Pace):
			}
		}
	}

	r.clearUnreachable()
	slog.Info("Outbox drained", "delivered", delivered)
	return delivered, nil
}

// deliverOne attempts a single delivery under the per-attempt timeout.
func (r *Reconciler) deliverOne(ctx context.Context, c service.Consumer, rec model.Record) error {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
	defer cancel()
	return c.Deliver(attemptCtx, rec)
}

func (r *Reconciler) inCooldown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.lastFailure.IsZero() && time.Since(r.lastFailure) < r.cfg.Cooldown
}

func (r *Reconciler) markUnreachable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFailure = time.Now()
}

func (r *Reconciler) clearUnreachable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFailure = time.Time{}
}
