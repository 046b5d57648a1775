package consumer

import (
	"context"

	"ledgerbuddy/internal/model"
)

// Func adapts a plain function to the service.Consumer interface.
type Func func(ctx context.Context, rec model.Record) error

// Deliver implements service.Consumer.
func (f Func) Deliver(ctx context.Context, rec model.Record) error {
	return f(ctx, rec)
}
