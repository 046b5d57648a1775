package engine

import "sync"

// lockMap serializes operations per fingerprint. Operations on different
// fingerprints never block each other; a decision arriving for a
// fingerprint mid-scan waits for the scan to finish.
type lockMap struct {
	entries map[string]*lockEntry
	mu      sync.Mutex
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockMap() *lockMap {
	return &lockMap{entries: make(map[string]*lockEntry)}
}

// Lock acquires the lock for key and returns its release function.
func (l *lockMap) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}
