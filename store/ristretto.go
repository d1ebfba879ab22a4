package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoStore is a Store backed by ristretto's concurrent cache.
//
// It trades MemoryStore's deterministic eviction order for ristretto's
// TinyLFU admission and sampled LFU eviction, which hold up better under
// high churn. Writes are buffered: Set drains the buffers before returning
// so a following Get observes the write, but the admission policy may
// still reject an entry; a rejected entry surfaces as a later miss, which
// callers already treat as a recompute. Expiry stays lazy and per-entry.
type RistrettoStore struct {
	cache       *ristretto.Cache
	expirations atomic.Uint64
}

type ristrettoItem struct {
	value     any
	expiresAt time.Time
}

// NewRistrettoStore creates a ristretto-backed store sized for roughly
// maxItems entries (cost 1 per entry). maxItems<=0 falls back to
// DefaultMaxItems.
func NewRistrettoStore(maxItems int) (*RistrettoStore, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	// NumCounters should be ~10x the number of entries for admission accuracy
	numCounters := int64(maxItems) * 10
	if numCounters < 1000 {
		numCounters = 1000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     int64(maxItems),
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("store: ristretto init: %w", err)
	}

	return &RistrettoStore{cache: cache}, nil
}

// Get retrieves a live value. Returns (nil, false) on miss or expiry.
func (s *RistrettoStore) Get(_ context.Context, key string) (any, bool) {
	val, found := s.cache.Get(key)
	if !found {
		return nil, false
	}

	item, ok := val.(*ristrettoItem)
	if !ok {
		s.cache.Del(key)
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		s.cache.Del(key)
		s.expirations.Add(1)
		return nil, false
	}

	return item.value, true
}

// Set stores a value with the given TTL. TTL<=0 means don't cache.
func (s *RistrettoStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	item := &ristrettoItem{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	// Admission may reject the entry; that is a cache policy decision,
	// not an error.
	_ = s.cache.Set(key, item, 1)

	// Drain the write buffers so the entry is visible to the next Get.
	s.cache.Wait()
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (s *RistrettoStore) Delete(_ context.Context, key string) error {
	s.cache.Del(key)
	return nil
}

// Len reports an approximate entry count derived from ristretto's
// metrics; explicit deletes are not tracked, so the count can overstate.
func (s *RistrettoStore) Len() int {
	m := s.cache.Metrics
	return int(m.KeysAdded() - m.KeysEvicted())
}

// Clear drops every entry and resets ristretto's internal metrics.
func (s *RistrettoStore) Clear(_ context.Context) error {
	s.cache.Clear()
	return nil
}

// Stats returns counters assembled from ristretto's metrics. Hit, miss
// and eviction counts are ristretto's; expirations are tracked here as
// entries reclaimed lazily on Get.
func (s *RistrettoStore) Stats() Stats {
	m := s.cache.Metrics
	return Stats{
		Hits:        m.Hits(),
		Misses:      m.Misses(),
		Expirations: s.expirations.Load(),
		Evictions:   m.KeysEvicted(),
		Items:       int(m.KeysAdded() - m.KeysEvicted()),
	}
}

// Close releases ristretto's background resources. The store must not be
// used after Close.
func (s *RistrettoStore) Close() {
	s.cache.Close()
}

// Ensure RistrettoStore implements Store and StatsProvider
var (
	_ Store         = (*RistrettoStore)(nil)
	_ StatsProvider = (*RistrettoStore)(nil)
)
