package engine

import (
	"strings"
	"sync"
	"time"
)

// financialSources are application identifiers known to emit transaction
// notifications.
var financialSources = map[string]struct{}{
	"com.google.android.apps.messaging":      {},
	"com.android.messaging":                  {},
	"com.samsung.android.messaging":          {},
	"com.android.mms":                        {},
	"com.phonepe.app":                        {},
	"com.google.android.apps.nbu.paisa.user": {},
	"in.org.npci.upiapp":                     {},
	"net.one97.paytm":                        {},
	"com.amazon.mShop.android.shopping":      {},
	"in.amazon.mShop.android.shopping":       {},
	"com.mobikwik_new":                       {},
	"com.freecharge.android":                 {},
	"com.whatsapp":                           {},
	"com.whatsapp.w4b":                       {},
}

// sourceKeywords widen the gate to apps whose identifier suggests a
// banking or messaging role.
var sourceKeywords = []string{
	"bank", "upi", "payment", "wallet", "paisa", "money",
	"sms", "message", "messaging",
}

// IsFinancialSource reports whether the source app plausibly emits
// financial notifications.
func IsFinancialSource(sourceApp string) bool {
	if _, ok := financialSources[sourceApp]; ok {
		return true
	}

	lower := strings.ToLower(sourceApp)
	for _, keyword := range sourceKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ownNotificationPhrases identify this system's own confirmation
// notifications, which must never be re-ingested as detections.
var ownNotificationPhrases = []string{
	"duplicate",
	"transaction added",
	"expense tracker",
	"monitoring financial",
	"possible duplicate",
	"similar transaction",
}

func isOwnNotification(title, body string) bool {
	lower := strings.ToLower(title + " " + body)
	for _, phrase := range ownNotificationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// replaySuppressor drops re-posts of the same notification within a
// short horizon. It is in-memory only and distinct from fingerprint
// dedup: it exists because hosts re-deliver the identical notification
// object within seconds, which would otherwise produce a fresh
// fingerprint per re-post.
type replaySuppressor struct {
	seen map[string]time.Time
	ttl  time.Duration
	mu   sync.Mutex
}

func newReplaySuppressor(ttl time.Duration) *replaySuppressor {
	return &replaySuppressor{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// Observe records the key and reports whether it is new within the TTL.
func (r *replaySuppressor) Observe(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.seen {
		if now.Sub(t) >= r.ttl {
			delete(r.seen, k)
		}
	}

	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = now
	return true
}
