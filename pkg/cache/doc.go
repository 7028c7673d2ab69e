// Package cache provides the memoization layer for lazy configuration
// resolution: a generic, thread-safe, write-once Store plus the Lazy
// wrapper that guarantees at-most-one resolution per key.
//
// # Write-once by design
//
// There is deliberately no Delete, no TTL and no eviction. A configuration
// value, once resolved, stays identical for the cache's lifetime even if
// the backend's value changes underneath — processes observe a consistent
// configuration for their entire run.
//
// # Single resolution under concurrency
//
// Lazy.GetOrResolve implements the double-checked pattern: a lock-free read,
// then per-key coalescing (singleflight) with a re-check inside the flight.
// N concurrent first accesses to one key produce exactly one backend call;
// different keys resolve independently. Resolution failures are never
// cached, so the next access retries.
//
//	lazy, _ := cache.NewLazy[string]()
//	v, err := lazy.GetOrResolve(ctx, "DB_PASS", func(ctx context.Context) (string, error) {
//	    return client.Read(ctx, "db/creds", "PASSWORD")
//	})
//
// # Observability
//
// Statistics (hits, misses, sets, size) are always collected. Pass
// WithMetrics to additionally export them through a metric.MetricsRegistry.
package cache
