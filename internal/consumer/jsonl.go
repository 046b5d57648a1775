package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
)

// JSONLConsumer appends delivered records to a JSON-lines file, syncing
// each write before acknowledging. It stands in for the downstream
// transaction database when draining from the command line.
type JSONLConsumer struct {
	path string
	mu   sync.Mutex
}

// NewJSONLConsumer creates a consumer writing to the given path. The
// parent directory is created if needed.
func NewJSONLConsumer(path string) (*JSONLConsumer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output path", common.ErrMissingConfig)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &JSONLConsumer{path: path}, nil
}

// Deliver appends the record as one JSON line. A nil return is the
// acknowledgment; any failure leaves the record undelivered.
func (c *JSONLConsumer) Deliver(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConsumerUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConsumerUnavailable, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConsumerUnavailable, err)
	}
	return nil
}
