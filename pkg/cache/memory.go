package cache

import (
	"context"
	"sync"
	"time"
)

const storeMemory = "memory"

// Store is a key/value store for upstream response bodies with per-entry TTL.
type Store interface {
	// Get returns the value for key. It reports false if the key was never
	// set or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores val under key, replacing any previous entry, expiring ttl
	// from now. A ttl of 0 never expires and a negative ttl is expired at once.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)

	// Len returns the number of stored entries, including expired entries
	// that have not been read since they expired.
	Len() int
}

// Memory is an unbounded in-memory Store. Expired entries are removed when
// they are read; there is no background sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	now     func() time.Time
}

// NewMemory creates an empty unbounded cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return nil, false
	}
	if e.IsExpired(m.now()) {
		delete(m.entries, key)
		CacheExpired.WithLabelValues(storeMemory).Inc()
		CacheMisses.WithLabelValues(storeMemory).Inc()
		CacheEntries.WithLabelValues(storeMemory).Set(float64(len(m.entries)))
		return nil, false
	}

	CacheHits.WithLabelValues(storeMemory).Inc()
	return e.Value, true
}

// Set stores a value with per-entry TTL.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = newEntry(key, val, ttl, m.now())
	CacheSets.WithLabelValues(storeMemory).Inc()
	CacheEntries.WithLabelValues(storeMemory).Set(float64(len(m.entries)))
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
