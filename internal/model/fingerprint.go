package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Fingerprint derives the unique identity of one detection event.
//
// The digest covers the source app, the notification title and body, and
// the detection instant in epoch milliseconds. Two textually identical
// notifications observed at different instants therefore get different
// fingerprints: the fingerprint identifies the detection, not the
// underlying payment. Semantic duplication across detections is handled
// by the similarity scan instead.
func Fingerprint(sourceApp, title, body string, detectedAt time.Time) string {
	data := fmt.Sprintf("%s|%s|%s|%d", sourceApp, title, body, detectedAt.UnixMilli())
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
