package memoize

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/memoize/keygen"
	"github.com/jonwraymond/memoize/observe"
	"github.com/jonwraymond/memoize/store"
)

// Func is the shape of a wrappable function: variadic arguments in, one
// result out. Errors propagate to the caller unchanged and are never
// cached.
type Func func(ctx context.Context, args ...any) (any, error)

// Memoizer caches the results of wrapped functions in a shared bounded
// store. Wrapped calls derive a key from their arguments, return the
// stored result while it is live, and execute the function otherwise.
//
// Contract:
//   - Concurrency: safe for concurrent use. The store is guarded, but the
//     lookup-execute-store sequence is not atomic: without Singleflight,
//     concurrent misses on one key may execute the function redundantly
//     and the last write wins. Harmless for pure functions.
//   - Sharing: all functions wrapped by one Memoizer share its store.
//     Calls that derive equal keys share an entry, whichever function
//     they came from; isolate with separate Memoizers or key prefixes.
//   - Errors: a failed call leaves the store unchanged for its key.
type Memoizer struct {
	ttl       time.Duration
	generator keygen.Generator
	strategy  string
	store     store.Store
	single    bool
	group     singleflight.Group

	tracer  observe.Tracer
	metrics observe.Metrics
	logger  observe.Logger
}

// New creates a Memoizer from cfg. Zero-value fields take defaults;
// negative TTL or MaxItems and unknown strategies are configuration
// errors.
func New(cfg Config) (*Memoizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	maxItems := cfg.MaxItems
	if maxItems == 0 {
		maxItems = DefaultMaxItems
	}

	generator := cfg.Generator
	if generator == nil {
		var err error
		generator, err = keygen.ForStrategy(cfg.Strategy)
		if err != nil {
			return nil, err
		}
	}

	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore(maxItems)
	}

	m := &Memoizer{
		ttl:       ttl,
		generator: generator,
		strategy:  strategyLabel(generator),
		store:     st,
		single:    cfg.Singleflight,
		tracer:    observe.NewNoopTracer(),
		metrics:   observe.NewNoopMetrics(),
		logger:    observe.NewNoopLogger(),
	}

	if cfg.Observer != nil {
		metrics, err := observe.NewMetrics(cfg.Observer.Meter())
		if err != nil {
			return nil, fmt.Errorf("memoize: metrics init: %w", err)
		}
		m.tracer = observe.NewTracer(cfg.Observer.Tracer())
		m.metrics = metrics
		m.logger = cfg.Observer.Logger()
	}

	return m, nil
}

// Wrap returns a memoized version of fn. Each call derives a key, serves
// a live stored result if one exists, and otherwise executes fn and
// stores the result under the effective TTL.
//
// Call sequence:
//  1. Derive (key, invalidate) via the effective generator. A derivation
//     error is returned as-is; fn is not invoked.
//  2. If the generator signaled invalidation, or the context carries
//     WithInvalidate, the key's entry is deleted and the lookup skipped.
//  3. A hit returns the stored value; the TTL is not renewed.
//  4. A miss executes fn. Its error passes through unchanged and nothing
//     is stored; its result is stored and returned.
//
// A nil fn yields a Func that always returns ErrNilFunc.
func (m *Memoizer) Wrap(fn Func, opts ...Option) Func {
	if fn == nil {
		return func(context.Context, ...any) (any, error) {
			return nil, ErrNilFunc
		}
	}

	settings := wrapSettings{
		ttl:       m.ttl,
		generator: m.generator,
		strategy:  m.strategy,
		name:      "func",
	}
	for _, opt := range opts {
		opt(&settings)
	}

	meta := observe.CallMeta{Name: settings.name, Strategy: settings.strategy}
	logger := m.logger.WithCall(meta)

	return func(ctx context.Context, args ...any) (any, error) {
		start := time.Now()
		ctx, span := m.tracer.StartSpan(ctx, meta)

		finish := func(outcome observe.Outcome, key string, err error) {
			duration := time.Since(start)
			m.tracer.EndSpan(span, outcome, err)
			m.metrics.RecordCall(ctx, meta, outcome, duration, err)

			fields := []observe.Field{
				{Key: "outcome", Value: string(outcome)},
				{Key: "key", Value: key},
				{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)},
			}
			if err != nil {
				fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
				logger.Error(ctx, "memoized call failed", fields...)
				return
			}
			logger.Debug(ctx, "memoized call served", fields...)
		}

		derivation, err := settings.generator.Derive(ctx, args)
		if err != nil {
			finish(observe.OutcomeMiss, "", err)
			return nil, err
		}
		key := derivation.Key
		span.SetAttributes(attribute.String("cache.key", key))

		outcome := observe.OutcomeMiss
		if derivation.Invalidate || InvalidateFromContext(ctx) {
			outcome = observe.OutcomeInvalidate
			_ = m.store.Delete(ctx, key)
		} else if value, ok := m.store.Get(ctx, key); ok {
			finish(observe.OutcomeHit, key, nil)
			return value, nil
		}

		result, err := m.invoke(ctx, fn, key, args)
		if err != nil {
			finish(outcome, key, err)
			return result, err
		}

		if err := m.store.Set(ctx, key, result, settings.ttl); err != nil {
			logger.Warn(ctx, "result not cached",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
		finish(outcome, key, nil)
		return result, nil
	}
}

// invoke executes fn, collapsing concurrent same-key executions when
// singleflight is enabled.
func (m *Memoizer) invoke(ctx context.Context, fn Func, key string, args []any) (any, error) {
	if !m.single {
		return fn(ctx, args...)
	}
	result, err, _ := m.group.Do(key, func() (any, error) {
		return fn(ctx, args...)
	})
	return result, err
}

// Invalidate removes the stored entry for key. Absent keys are a no-op.
// Use WithInvalidate to scope an invalidation to one call instead.
func (m *Memoizer) Invalidate(ctx context.Context, key string) error {
	err := m.store.Delete(ctx, key)
	if err == nil {
		m.logger.Debug(ctx, "entry invalidated", observe.Field{Key: "key", Value: key})
	}
	return err
}

// Clear drops every stored entry.
func (m *Memoizer) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Stats reports the underlying store's counters, when it tracks them.
func (m *Memoizer) Stats() (store.Stats, bool) {
	if provider, ok := m.store.(store.StatsProvider); ok {
		return provider.Stats(), true
	}
	return store.Stats{}, false
}
