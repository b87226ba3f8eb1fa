package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback backend: a map from key to
// insertion time, swept lazily on every read and write. State is
// process-lifetime only and is not shared across instances; that is a
// documented limitation of the fallback path, not a bug.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	retention time.Duration

	// now is swapped out in tests to drive expiry
	now func() time.Time
}

// NewMemoryStore creates an in-process store with the given retention window.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

// IsUsed reports whether key holds an unexpired entry. Never errors.
func (m *MemoryStore) IsUsed(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	_, ok := m.entries[key]
	return ok, nil
}

// MarkUsed inserts or refreshes key with the current time. Never errors.
func (m *MemoryStore) MarkUsed(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.entries[key] = m.now()
	return nil
}

// sweep drops entries older than the retention window. Caller holds mu.
func (m *MemoryStore) sweep() {
	cutoff := m.now().Add(-m.retention)
	for key, inserted := range m.entries {
		if inserted.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}
