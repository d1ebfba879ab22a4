// Package observe provides observability primitives for memoized calls.
//
// It is a pure instrumentation library: no caching, no key derivation, no
// I/O beyond exporter setup. Consumers wire the observer into the memoize
// call path; everything degrades to a no-op when disabled.
package observe
