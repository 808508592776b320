// Package cache provides the in-process response cache used by the proxy.
//
// Every entry carries its own expiry. Expiry is lazy: an entry whose TTL has
// elapsed is dropped the next time it is read and is never returned. Entries
// written with a TTL of 0 never expire; a negative TTL is already expired.
//
// Two Store implementations are available:
//
//   - Memory: a mutex-guarded map with no size bound (the default)
//   - Bounded: an otter W-TinyLFU cache capped at a maximum entry count
//
// # Basic Usage
//
//	store, err := cache.New(cfg.CacheMaxEntries, cfg.CacheTTL)
//	if err != nil {
//		return err
//	}
//
//	key := cache.Key{
//		Path:  "/alpha/us",
//		Query: r.URL.Query(),
//	}.String()
//
//	if body, ok := store.Get(ctx, key); ok {
//		// cache hit
//	}
//	store.Set(ctx, key, body, cfg.CacheTTL)
//
// # Metrics
//
//   - countries_cache_hits_total{store}
//   - countries_cache_misses_total{store}
//   - countries_cache_expired_total{store}
//   - countries_cache_sets_total{store}
//   - countries_cache_entries{store}
package cache
