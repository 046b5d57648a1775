// Package consumer provides downstream consumer implementations and the
// registry through which the engine discovers a live consumer.
package consumer

import (
	"sync"

	"ledgerbuddy/internal/service"
)

// Registry tracks whether a live consumer is attached. The reconciler
// asks it at drain time; when no consumer is attached, records simply
// stay in the durable outbox. This replaces any reliance on a mutable
// global consumer reference: delivery is uniformly asynchronous and
// always falls back to the outbox path.
type Registry struct {
	active service.Consumer
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry with no consumer attached.
func NewRegistry() *Registry {
	return &Registry{}
}

// Attach registers c as the live consumer, replacing any previous one.
func (r *Registry) Attach(c service.Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = c
}

// Detach removes the live consumer.
func (r *Registry) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = nil
}

// Active returns the live consumer, or nil when none is attached.
func (r *Registry) Active() service.Consumer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}
