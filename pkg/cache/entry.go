package cache

import "time"

// CacheEntry is a cached upstream response body.
type CacheEntry struct {
	// Key is the cache key the entry was stored under.
	Key string

	// Value is the upstream JSON body.
	Value []byte

	// ExpiresAt is when the entry stops being served.
	// The zero time means the entry never expires.
	ExpiresAt time.Time
}

// newEntry builds an entry expiring ttl after now. A ttl of 0 never expires;
// a negative ttl yields an entry that is already expired.
func newEntry(key string, value []byte, ttl time.Duration, now time.Time) CacheEntry {
	e := CacheEntry{Key: key, Value: value}
	if ttl != 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

// IsExpired reports whether the entry must no longer be served at now.
// An entry is expired from the instant now reaches ExpiresAt.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(e.ExpiresAt)
}
