package model

// DetectionEvent is one observed notification from a source application.
type DetectionEvent struct {
	SourceApp string `json:"sourceApp"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Text returns the combined text the parser operates on.
func (e DetectionEvent) Text() string {
	if e.Title == "" {
		return e.Body
	}
	if e.Body == "" {
		return e.Title
	}
	return e.Title + " " + e.Body
}

// Decision is the user's answer to a duplicate confirmation request.
type Decision string

// Decision constants.
const (
	DecisionYes Decision = "yes"
	DecisionNo  Decision = "no"
)

// DecisionEvent resolves a pending transaction identified by fingerprint.
type DecisionEvent struct {
	Fingerprint string   `json:"fingerprint"`
	Decision    Decision `json:"decision"`
}

// UnparsedDetection is a detection whose text could not be parsed,
// retained on a best-effort queue for later inspection or replay.
type UnparsedDetection struct {
	ID        string `json:"id"`
	SourceApp string `json:"sourceApp"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}
