package consumer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
)

func sampleRecord(fingerprint string) model.Record {
	return model.NewRecord(model.Transaction{
		DetectedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Fingerprint: fingerprint,
		SourceApp:   "com.phonepe.app",
		Note:        "sample",
		Category:    model.CategoryFood,
		Direction:   model.DirectionExpense,
		Icon:        model.CategoryFood.Icon(),
		Amount:      250,
	})
}

func TestRegistryAttachDetach(t *testing.T) {
	registry := NewRegistry()
	assert.Nil(t, registry.Active())

	sink := Func(func(context.Context, model.Record) error { return nil })
	registry.Attach(sink)
	assert.NotNil(t, registry.Active())

	registry.Detach()
	assert.Nil(t, registry.Active())
}

func TestJSONLConsumerAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")

	sink, err := NewJSONLConsumer(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Deliver(ctx, sampleRecord("fp-1")))
	require.NoError(t, sink.Deliver(ctx, sampleRecord("fp-2")))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var fingerprints []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec model.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		fingerprints = append(fingerprints, rec.Fingerprint)
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{"fp-1", "fp-2"}, fingerprints)
}

func TestJSONLConsumerEmptyPath(t *testing.T) {
	_, err := NewJSONLConsumer("")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestJSONLConsumerUnreachablePath(t *testing.T) {
	dir := t.TempDir()

	// The target path is a directory, so the open fails and the record
	// stays undelivered.
	sink, err := NewJSONLConsumer(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0750))

	err = sink.Deliver(context.Background(), sampleRecord("fp-1"))
	assert.ErrorIs(t, err, common.ErrConsumerUnavailable)
	assert.True(t, common.IsRetryable(err))
}

func TestJSONLConsumerCanceledContext(t *testing.T) {
	sink, err := NewJSONLConsumer(filepath.Join(t.TempDir(), "out.jsonl"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sink.Deliver(ctx, sampleRecord("fp-1"))
	assert.True(t, errors.Is(err, context.Canceled))
}
