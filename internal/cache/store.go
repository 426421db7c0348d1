// Package cache implements the two-tier response cache used by the gateway:
// an always-present volatile in-process tier, plus an optional durable tier
// (Redis) that survives process restarts.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// Store is one key/value tier of the response cache. Implementations report
// the remaining TTL on a hit so values can be promoted between tiers without
// extending their lifetime.
type Store interface {
	// Get returns the value and its remaining TTL. ok is false for missing or
	// expired entries.
	Get(ctx context.Context, key string) (value []byte, ttl time.Duration, ok bool, err error)

	// Set stores the value with the given TTL, overwriting any prior entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is the volatile tier: a mutex-guarded in-process map with lazy
// expiry. Expired entries are logically absent but may occupy memory until the
// next access; there is no background sweeper.
// It is safe for concurrent use by multiple goroutines.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty volatile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the entry for key if present and unexpired. An expired entry is
// removed on access and reported as a miss.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, 0, false, nil
	}

	remaining := time.Until(entry.expires)
	if remaining <= 0 {
		delete(m.entries, key)
		return nil, 0, false, nil
	}

	return entry.value, remaining, true, nil
}

// Set stores value under key, expiring after ttl.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:   value,
		expires: time.Now().Add(ttl),
	}

	return nil
}

// Invalidate removes every entry whose key contains pattern as a substring.
// It returns the number of removed entries.
func (m *MemoryStore) Invalidate(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.Contains(key, pattern) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed
}

// Clear removes all entries.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
}

// Len reports the current entry count, including expired entries that have not
// yet been evicted by a read.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
