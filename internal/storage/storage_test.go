package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/storage"
	"ledgerbuddy/internal/testutil"
)

func testRecord(fingerprint string, amount float64, direction model.Direction, at time.Time) model.Record {
	return model.NewRecord(model.Transaction{
		DetectedAt:  at,
		Fingerprint: fingerprint,
		SourceApp:   "com.phonepe.app",
		Note:        "test transaction",
		Category:    model.CategoryFood,
		Direction:   direction,
		Icon:        model.CategoryFood.Icon(),
		Amount:      amount,
	})
}

func TestSavePendingAndGet(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := testRecord("fp-1", 250, model.DirectionExpense, at)
	require.NoError(t, store.SavePending(ctx, rec))

	got, err := store.GetPending(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	_, err = store.GetConfirmed(ctx, "fp-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSavePendingIdempotent(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := testRecord("fp-1", 250, model.DirectionExpense, at)
	require.NoError(t, store.SavePending(ctx, rec))
	require.NoError(t, store.SavePending(ctx, rec))

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDeletePending(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SavePending(ctx, testRecord("fp-1", 250, model.DirectionExpense, at)))
	require.NoError(t, store.DeletePending(ctx, "fp-1"))

	// A second delete reports the record as already resolved.
	err := store.DeletePending(ctx, "fp-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveConfirmedWritesOutboxMirror(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := testRecord("fp-1", 250, model.DirectionExpense, at)
	require.NoError(t, store.SaveConfirmed(ctx, rec))

	got, err := store.GetConfirmed(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	outbox, err := store.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, outbox, 1)
	assert.Equal(t, rec, outbox[0])
}

func TestSaveConfirmedIdempotent(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := testRecord("fp-1", 250, model.DirectionExpense, at)
	require.NoError(t, store.SaveConfirmed(ctx, rec))
	require.NoError(t, store.SaveConfirmed(ctx, rec))

	count, err := store.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConfirmPending(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := testRecord("fp-1", 250, model.DirectionExpense, at)
	require.NoError(t, store.SavePending(ctx, rec))

	confirmed, err := store.ConfirmPending(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, rec, *confirmed)

	// Moved out of pending, into confirmed plus outbox.
	_, err = store.GetPending(ctx, "fp-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := store.GetConfirmed(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	count, err := store.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConfirmPendingUnknownFingerprint(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	_, err := store.ConfirmPending(ctx, "never-seen")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Nothing was half-written.
	count, err := store.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountSimilar(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// One confirmed and one pending inside the window, one confirmed
	// outside it, one with a different amount, one opposite direction.
	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-in-confirmed", 250, model.DirectionExpense, at.Add(-time.Hour))))
	require.NoError(t, store.SavePending(ctx, testRecord("fp-in-pending", 250, model.DirectionExpense, at.Add(-2*time.Hour))))
	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-too-old", 250, model.DirectionExpense, at.Add(-25*time.Hour))))
	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-other-amount", 300, model.DirectionExpense, at.Add(-time.Hour))))
	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-other-direction", 250, model.DirectionIncome, at.Add(-time.Hour))))

	since := at.Add(-24 * time.Hour)

	count, err := store.CountSimilar(ctx, 250, model.DirectionExpense, since)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCountSimilarWindowBoundaryInclusive(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	since := at.Add(-24 * time.Hour)

	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-on-boundary", 250, model.DirectionExpense, since)))
	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-just-before", 250, model.DirectionExpense, since.Add(-time.Millisecond))))

	count, err := store.CountSimilar(ctx, 250, model.DirectionExpense, since)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteOutboxIdempotent(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveConfirmed(ctx, testRecord("fp-1", 250, model.DirectionExpense, at)))
	require.NoError(t, store.DeleteOutbox(ctx, "fp-1"))
	require.NoError(t, store.DeleteOutbox(ctx, "fp-1"))

	count, err := store.CountOutbox(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The confirmed record is untouched by outbox removal.
	_, err = store.GetConfirmed(ctx, "fp-1")
	assert.NoError(t, err)
}

func TestListOutboxInsertionOrder(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		fp := fmt.Sprintf("fp-%d", i)
		require.NoError(t, store.SaveConfirmed(ctx, testRecord(fp, float64(100+i), model.DirectionExpense, at)))
	}

	outbox, err := store.ListOutbox(ctx)
	require.NoError(t, err)
	require.Len(t, outbox, 3)
	for i, rec := range outbox {
		assert.Equal(t, fmt.Sprintf("fp-%d", i), rec.Fingerprint)
	}
}

func TestUnparsedQueue(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	det := model.UnparsedDetection{
		SourceApp: "com.phonepe.app",
		Title:     "Payment",
		Body:      "gibberish without amounts",
		Timestamp: time.Now().UnixMilli(),
	}
	require.NoError(t, store.QueueUnparsed(ctx, det))

	queued, err := store.ListUnparsed(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.NotEmpty(t, queued[0].ID, "an ID is assigned on enqueue")
	assert.Equal(t, det.Body, queued[0].Body)
}

func TestValidationErrors(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		op   func() error
	}{
		{
			name: "missing fingerprint",
			op: func() error {
				rec := testRecord("", 250, model.DirectionExpense, at)
				return store.SavePending(ctx, rec)
			},
		},
		{
			name: "non-positive amount",
			op: func() error {
				rec := testRecord("fp-bad", 0, model.DirectionExpense, at)
				return store.SaveConfirmed(ctx, rec)
			},
		},
		{
			name: "invalid direction",
			op: func() error {
				rec := testRecord("fp-bad", 250, model.Direction("sideways"), at)
				return store.SavePending(ctx, rec)
			},
		},
		{
			name: "empty fingerprint lookup",
			op: func() error {
				_, err := store.GetPending(ctx, "")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.op())
		})
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	// SetupTestStore already migrated once.
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStoreEmptyPath(t *testing.T) {
	_, err := storage.NewSQLiteStore("")
	assert.Error(t, err)
}
