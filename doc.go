// Package memoize caches function results in a bounded, TTL-expiring
// in-memory store.
//
// A Memoizer wraps functions of the Func shape; repeated calls that derive
// the same cache key return the stored result instead of re-executing.
// Keys come from one of three strategies: the call's primitive argument
// values (args), the first argument's query parameters with header-driven
// invalidation (request), or a user-supplied key func (custom). Entries
// expire lazily after their TTL and are never renewed by a hit; when the
// store is full, expired entries are reclaimed before the entry closest
// to its own expiry is evicted.
//
// The lookup-execute-store sequence is deliberately not atomic: two
// concurrent misses on one key may execute the function twice, last write
// wins. Enable Config.Singleflight to collapse such misses per key.
package memoize
