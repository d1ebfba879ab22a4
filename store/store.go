package store

import (
	"context"
	"time"
)

// Store is the interface for bounded, TTL-expiring result storage.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Expiry: lazy. Get treats an entry past its expiry as a miss and may
//   reclaim it in place; no background sweeper exists. A hit never renews
//   the entry's TTL.
// - Errors: Get should never error; it returns (nil, false) on miss.
type Store interface {
	// Get retrieves a live value. Returns (nil, false) on miss or expiry.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores a value with the given TTL. TTL<=0 means no caching.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Len reports the number of stored entries.
	Len() int

	// Clear drops every entry.
	Clear(ctx context.Context) error
}

// Stats are cumulative counters for a single store instance.
type Stats struct {
	// Hits counts Gets that returned a live value.
	Hits uint64

	// Misses counts Gets that found nothing live, including expiries.
	Misses uint64

	// Expirations counts entries reclaimed because their TTL had passed.
	Expirations uint64

	// Evictions counts live entries removed to make room for an insert.
	Evictions uint64

	// Items is the entry count at the time Stats was taken.
	Items int
}

// StatsProvider is implemented by stores that track Stats.
type StatsProvider interface {
	Stats() Stats
}
