package store

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxItems bounds a MemoryStore when no capacity is given.
const DefaultMaxItems = 128

// MemoryStore is the reference in-memory Store: a map bounded to a fixed
// number of entries, each carrying an absolute expiry and an insertion
// sequence.
//
// A single mutex guards every operation. Get mutates (lazy expiry
// reclamation plus counters), so there is no cheap read path; the coarse
// lock also keeps the eviction scan atomic with the insert it makes room
// for. No lock is held while caller code runs.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*entry
	maxItems int
	seq      uint64

	hits        uint64
	misses      uint64
	expirations uint64
	evictions   uint64
}

type entry struct {
	value     any
	expiresAt time.Time
	seq       uint64
}

// NewMemoryStore creates a store holding at most maxItems entries.
// maxItems<=0 falls back to DefaultMaxItems.
func NewMemoryStore(maxItems int) *MemoryStore {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &MemoryStore{
		entries:  make(map[string]*entry),
		maxItems: maxItems,
	}
}

// Get retrieves a live value. Returns (nil, false) on miss or expiry.
// An expired entry is reclaimed in place; a hit never extends a lifetime.
func (s *MemoryStore) Get(_ context.Context, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		// Expired - reclaim lazily
		delete(s.entries, key)
		s.expirations++
		s.misses++
		return nil, false
	}

	s.hits++
	return e.value, true
}

// Set stores a value with the given TTL. TTL<=0 means don't cache.
//
// Inserting a new key into a full store reclaims every expired entry
// first; if the store is still full, the entry closest to expiry is
// evicted, ties broken by oldest insertion. Overwriting a key counts as a
// fresh insertion (new expiry, new sequence). The value is stored by
// reference, not copied.
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if _, ok := s.entries[key]; !ok && len(s.entries) >= s.maxItems {
		s.reclaimExpired(now)
		for len(s.entries) >= s.maxItems {
			s.evictSoonest()
		}
	}

	s.seq++
	s.entries[key] = &entry{
		value:     value,
		expiresAt: now.Add(ttl),
		seq:       s.seq,
	}
	return nil
}

// reclaimExpired drops every entry whose expiry has passed. Caller holds mu.
func (s *MemoryStore) reclaimExpired(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			s.expirations++
		}
	}
}

// evictSoonest removes the live entry with the nearest expiry, preferring
// the oldest insertion on equal expiries. Caller holds mu.
func (s *MemoryStore) evictSoonest() {
	var victimKey string
	var victim *entry
	for k, e := range s.entries {
		if victim == nil || e.expiresAt.Before(victim.expiresAt) ||
			(e.expiresAt.Equal(victim.expiresAt) && e.seq < victim.seq) {
			victimKey, victim = k, e
		}
	}
	if victim == nil {
		return
	}
	delete(s.entries, victimKey)
	s.evictions++
}

// Delete removes a value. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len reports the entry count, including expired entries not yet reclaimed.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops every entry. Counters are preserved.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
	return nil
}

// Stats returns a snapshot of the store's counters.
func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Hits:        s.hits,
		Misses:      s.misses,
		Expirations: s.expirations,
		Evictions:   s.evictions,
		Items:       len(s.entries),
	}
}

// Ensure MemoryStore implements Store and StatsProvider
var (
	_ Store         = (*MemoryStore)(nil)
	_ StatsProvider = (*MemoryStore)(nil)
)
