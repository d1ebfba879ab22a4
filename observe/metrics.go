package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies how a memoized call was served.
type Outcome string

const (
	// OutcomeHit means a cached value was returned without calling the function.
	OutcomeHit Outcome = "hit"
	// OutcomeMiss means the call was not served from cache, because no
	// live value existed or the call failed before lookup.
	OutcomeMiss Outcome = "miss"
	// OutcomeInvalidate means a cached entry was discarded before the call.
	OutcomeInvalidate Outcome = "invalidate"
)

// Metrics records call metrics for memoized functions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records a memoized call with its outcome, duration, and error status.
	RecordCall(ctx context.Context, meta CallMeta, outcome Outcome, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"memoize.calls.total",
		metric.WithDescription("Total number of memoized calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"memoize.calls.errors",
		metric.WithDescription("Total number of memoized call errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"memoize.call.duration_ms",
		metric.WithDescription("Memoized call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordCall records metrics for a memoized call.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, outcome Outcome, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("call.name", meta.Name),
		attribute.String("outcome", string(outcome)),
	}
	if meta.Strategy != "" {
		attrs = append(attrs, attribute.String("call.strategy", meta.Strategy))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration with sub-millisecond resolution; cache hits complete
	// in microseconds and would otherwise all round to zero.
	durationMs := float64(duration) / float64(time.Millisecond)
	m.durationHist.Record(ctx, durationMs, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics creates a no-op metrics recorder.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, outcome Outcome, duration time.Duration, err error) {
}
