package memoize

import (
	"time"

	"github.com/jonwraymond/memoize/keygen"
)

// wrapSettings are the effective settings for one wrap site, seeded from
// the memoizer's configuration and adjusted by Options.
type wrapSettings struct {
	ttl       time.Duration
	generator keygen.Generator
	strategy  string
	name      string
}

// Option adjusts one wrapped function's caching behavior.
type Option func(*wrapSettings)

// WithTTL overrides the memoizer's default TTL for this wrap site.
// A non-positive duration keeps the default.
func WithTTL(d time.Duration) Option {
	return func(s *wrapSettings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithGenerator selects a different key-derivation strategy for this wrap
// site. It takes precedence over the memoizer's strategy unconditionally.
// A nil generator keeps the memoizer's.
func WithGenerator(g keygen.Generator) Option {
	return func(s *wrapSettings) {
		if g != nil {
			s.generator = g
			s.strategy = strategyLabel(g)
		}
	}
}

// WithKeyFunc is shorthand for WithGenerator(keygen.NewFuncGenerator(fn)).
func WithKeyFunc(fn keygen.Func) Option {
	return WithGenerator(keygen.NewFuncGenerator(fn))
}

// WithName names this wrap site in logs, spans, and metrics.
func WithName(name string) Option {
	return func(s *wrapSettings) {
		if name != "" {
			s.name = name
		}
	}
}

// strategyLabel reports the telemetry label for a generator.
func strategyLabel(g keygen.Generator) string {
	switch g.(type) {
	case *keygen.ArgsGenerator:
		return string(keygen.StrategyArgs)
	case *keygen.RequestGenerator:
		return string(keygen.StrategyRequest)
	default:
		return "custom"
	}
}
