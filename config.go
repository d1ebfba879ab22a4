package memoize

import (
	"fmt"
	"time"

	"github.com/jonwraymond/memoize/keygen"
	"github.com/jonwraymond/memoize/observe"
	"github.com/jonwraymond/memoize/store"
)

// DefaultTTL is the entry lifetime used when Config.TTL is zero.
const DefaultTTL = 5 * time.Minute

// DefaultMaxItems is the store capacity used when Config.MaxItems is zero.
const DefaultMaxItems = store.DefaultMaxItems

// Config configures a Memoizer.
type Config struct {
	// TTL is how long a stored result stays valid. A hit never renews it.
	// Zero means DefaultTTL; negative is rejected with ErrInvalidTTL.
	TTL time.Duration

	// MaxItems bounds the default store's entry count. Zero means
	// DefaultMaxItems; negative is rejected with ErrInvalidMaxItems.
	// Ignored when Store is set.
	MaxItems int

	// Strategy selects a built-in key-derivation strategy.
	// Default: keygen.StrategyArgs
	Strategy keygen.Strategy

	// Generator supplies a custom key-derivation strategy. When set, it
	// takes precedence over Strategy.
	Generator keygen.Generator

	// Store overrides the default bounded in-memory store. Results from
	// every function wrapped by the memoizer land in this one store, so
	// calls that derive equal keys share an entry across functions.
	Store store.Store

	// Singleflight collapses concurrent misses on the same key into one
	// execution; waiters share the leader's result and error, and the
	// leader's context governs the execution. When false, concurrent
	// misses may execute redundantly and the last write wins.
	Singleflight bool

	// Observer wires structured logging, tracing, and metrics around
	// every wrapped call. Nil disables all telemetry.
	Observer observe.Observer
}

// DefaultConfig returns a Config with the default TTL, capacity, and the
// args key strategy.
func DefaultConfig() Config {
	return Config{
		TTL:      DefaultTTL,
		MaxItems: DefaultMaxItems,
		Strategy: keygen.StrategyArgs,
	}
}

// Validate checks the configuration for values New rejects.
func (c Config) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTTL, c.TTL)
	}
	if c.MaxItems < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxItems, c.MaxItems)
	}
	if c.Generator == nil {
		if _, err := keygen.ForStrategy(c.Strategy); err != nil {
			return err
		}
	}
	return nil
}
