package engine

import "ledgerbuddy/internal/model"

// DetectionStatus is the terminal status of one processed detection.
type DetectionStatus string

// Detection status constants.
const (
	// DetectionSaved means the transaction was recorded directly.
	DetectionSaved DetectionStatus = "saved"
	// DetectionPending means the transaction awaits user confirmation.
	DetectionPending DetectionStatus = "pending_confirmation"
	// DetectionIgnored means the detection was dropped with a reason.
	DetectionIgnored DetectionStatus = "ignored"
	// DetectionQueued means the text was unparseable and queued for review.
	DetectionQueued DetectionStatus = "queued"
)

// DetectionResult is what the engine returns for an inbound detection event.
type DetectionResult struct {
	Record       *model.Record
	Status       DetectionStatus
	Fingerprint  string
	Reason       string
	SimilarCount int
}

// DecisionStatus is the outcome of an inbound decision event.
type DecisionStatus string

// Decision status constants.
const (
	// DecisionSaved means the pending transaction was confirmed.
	DecisionSaved DecisionStatus = "saved"
	// DecisionDiscarded means the pending transaction was deleted.
	DecisionDiscarded DecisionStatus = "discarded"
	// DecisionUnknown means the fingerprint had no pending record.
	DecisionUnknown DecisionStatus = "unknown"
)

// DecisionResult is what the engine returns for an inbound decision event.
type DecisionResult struct {
	Record *model.Record
	Status DecisionStatus
}
