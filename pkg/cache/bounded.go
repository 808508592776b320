package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

const storeBounded = "bounded"

// Bounded is a size-capped in-memory Store backed by otter (W-TinyLFU).
// The per-entry expiry is still checked on every Get, so TTL semantics match
// Memory; the size cap only adds eviction of cold entries.
type Bounded struct {
	cache *otter.Cache[string, CacheEntry]
	now   func() time.Time
}

// NewBounded creates a cache holding at most maxSize entries. When defaultTTL
// is positive otter also expires entries on its own after that long.
func NewBounded(maxSize int, defaultTTL time.Duration) (*Bounded, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("bounded cache size must be positive (got %d)", maxSize)
	}

	opts := &otter.Options[string, CacheEntry]{
		MaximumSize: maxSize,
	}
	if defaultTTL > 0 {
		opts.ExpiryCalculator = otter.ExpiryWriting[string, CacheEntry](defaultTTL)
	}

	c, err := otter.New[string, CacheEntry](opts)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Bounded{cache: c, now: time.Now}, nil
}

// Get retrieves a value from the cache if present and not expired.
func (b *Bounded) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := b.cache.GetIfPresent(key)
	if !ok {
		CacheMisses.WithLabelValues(storeBounded).Inc()
		return nil, false
	}
	if e.IsExpired(b.now()) {
		b.cache.Invalidate(key)
		CacheExpired.WithLabelValues(storeBounded).Inc()
		CacheMisses.WithLabelValues(storeBounded).Inc()
		return nil, false
	}

	CacheHits.WithLabelValues(storeBounded).Inc()
	return e.Value, true
}

// Set stores a value with per-entry TTL.
func (b *Bounded) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	b.cache.Set(key, newEntry(key, val, ttl, b.now()))
	CacheSets.WithLabelValues(storeBounded).Inc()
	CacheEntries.WithLabelValues(storeBounded).Set(float64(b.cache.EstimatedSize()))
}

// Len returns otter's estimate of the number of stored entries.
func (b *Bounded) Len() int {
	return b.cache.EstimatedSize()
}

// New returns a Bounded store when maxEntries is positive and an unbounded
// Memory store otherwise.
func New(maxEntries int, ttl time.Duration) (Store, error) {
	if maxEntries > 0 {
		return NewBounded(maxEntries, ttl)
	}
	return NewMemory(), nil
}
