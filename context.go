package memoize

import "context"

// Context keys for per-call cache directives.
type contextKey int

const invalidateKey contextKey = iota

// WithInvalidate returns a context that forces the memoized call made with
// it to discard any stored entry for its derived key before lookup. The
// directive travels with the one call that carries the context, so
// concurrent callers cannot observe each other's invalidations.
func WithInvalidate(ctx context.Context) context.Context {
	return context.WithValue(ctx, invalidateKey, true)
}

// InvalidateFromContext reports whether ctx carries a forced invalidation.
func InvalidateFromContext(ctx context.Context) bool {
	forced, _ := ctx.Value(invalidateKey).(bool)
	return forced
}
