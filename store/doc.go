// Package store provides bounded, TTL-expiring storage for memoized results.
//
// It provides a Store interface with two implementations: MemoryStore, a
// mutex-guarded map with deterministic expired-first eviction, and
// RistrettoStore, a ristretto-backed alternative for high-churn workloads.
package store
