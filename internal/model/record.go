package model

import "time"

// RecordDateFormat is the ISO-8601 UTC layout used for the persisted
// date field.
const RecordDateFormat = "2006-01-02T15:04:05.000Z"

// notePrefix marks notes captured automatically from a notification.
const notePrefix = "Auto-detected: "

// Record is the persisted form of a transaction, keyed by fingerprint.
// The same shape is stored in the pending, confirmed and outbox
// collections and serialized to the downstream consumer.
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	Direction   Direction `json:"direction"`
	Category    Category  `json:"category"`
	Note        string    `json:"note"`
	Source      string    `json:"source"`
	Date        string    `json:"date"`
	Icon        int       `json:"icon"`
	Timestamp   int64     `json:"timestamp"`
	Amount      float64   `json:"amount"`
}

// NewRecord converts a parsed transaction into its persisted form.
func NewRecord(tx Transaction) Record {
	return Record{
		Fingerprint: tx.Fingerprint,
		Direction:   tx.Direction,
		Category:    tx.Category,
		Note:        notePrefix + tx.Note,
		Source:      tx.SourceApp,
		Date:        tx.DetectedAt.UTC().Format(RecordDateFormat),
		Icon:        tx.Icon,
		Timestamp:   tx.DetectedAt.UnixMilli(),
		Amount:      tx.Amount,
	}
}

// DetectedAt returns the detection instant stored in the record.
func (r Record) DetectedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
