package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRecord(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 45, 123_000_000, time.UTC)
	tx := Transaction{
		DetectedAt:  at,
		Fingerprint: "abc123",
		SourceApp:   "com.phonepe.app",
		Note:        "You paid Rs. 250 to Swiggy",
		Category:    CategoryFood,
		Direction:   DirectionExpense,
		Icon:        CategoryFood.Icon(),
		Amount:      250,
	}

	rec := NewRecord(tx)

	assert.Equal(t, "abc123", rec.Fingerprint)
	assert.Equal(t, "Auto-detected: You paid Rs. 250 to Swiggy", rec.Note)
	assert.Equal(t, "com.phonepe.app", rec.Source)
	assert.Equal(t, "2025-06-01T12:30:45.123Z", rec.Date)
	assert.Equal(t, at.UnixMilli(), rec.Timestamp)
	assert.Equal(t, 250.0, rec.Amount)
}

func TestRecordDetectedAtRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 45, 123_000_000, time.UTC)
	rec := NewRecord(Transaction{DetectedAt: at})

	assert.True(t, rec.DetectedAt().Equal(at))
}
