// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"ledgerbuddy/internal/model"
)

// Store defines the contract for the durable persistence layer. It owns
// the pending, confirmed and outbox collections plus the best-effort
// unparsed queue, all keyed by fingerprint.
type Store interface {
	// Pending operations
	SavePending(ctx context.Context, rec model.Record) error
	GetPending(ctx context.Context, fingerprint string) (*model.Record, error)
	DeletePending(ctx context.Context, fingerprint string) error
	ListPending(ctx context.Context) ([]model.Record, error)

	// Confirmed operations. SaveConfirmed writes the confirmed record
	// and its outbox mirror in one transaction; ConfirmPending moves a
	// pending record to confirmed (plus outbox) atomically.
	SaveConfirmed(ctx context.Context, rec model.Record) error
	GetConfirmed(ctx context.Context, fingerprint string) (*model.Record, error)
	ConfirmPending(ctx context.Context, fingerprint string) (*model.Record, error)

	// CountSimilar reports how many confirmed-or-pending records share
	// the given amount and direction with a detection timestamp at or
	// after since.
	CountSimilar(ctx context.Context, amount float64, direction model.Direction, since time.Time) (int, error)

	// Outbox operations
	ListOutbox(ctx context.Context) ([]model.Record, error)
	DeleteOutbox(ctx context.Context, fingerprint string) error
	CountOutbox(ctx context.Context) (int, error)

	// Unparsed queue (best effort, no dedup or expiry guarantee)
	QueueUnparsed(ctx context.Context, det model.UnparsedDetection) error
	ListUnparsed(ctx context.Context) ([]model.UnparsedDetection, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Consumer is the downstream recipient of confirmed transactions.
// Deliver returns nil only on explicit acknowledgment; any error leaves
// the record undelivered.
type Consumer interface {
	Deliver(ctx context.Context, rec model.Record) error
}

// ConsumerSource answers whether a live consumer is currently attached.
// Active returns nil when none is; delivery then falls back to the
// durable outbox path.
type ConsumerSource interface {
	Active() Consumer
}

// ConfirmationRequest carries everything the interactive collaborator
// needs to ask the user about a probable duplicate.
type ConfirmationRequest struct {
	Fingerprint  string
	Note         string
	Direction    model.Direction
	Category     model.Category
	SimilarCount int
	Amount       float64
}

// ConfirmationPrompter is the interactive collaborator boundary.
// RequestConfirmation is fire-and-forget: the prompter is solely
// responsible for eventually producing a decision event.
type ConfirmationPrompter interface {
	RequestConfirmation(ctx context.Context, req ConfirmationRequest) error
}

// DecisionSink accepts asynchronous user decisions for pending
// transactions.
type DecisionSink interface {
	SubmitDecision(ev model.DecisionEvent) error
}

// SyncTrigger requests an opportunistic outbox drain. Implementations
// must not block.
type SyncTrigger interface {
	TriggerSync()
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
