package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Unit = (*TracedUnit)(nil)

// tracerName identifies the instrumentation scope for unit spans.
const tracerName = "tally-engine"

// TracedUnit decorates a ports.Unit with OpenTelemetry tracing and
// optional metrics collection. It creates a span per Execute call,
// records collection shape as span attributes, and reports latency and
// outcome counters through the configured MetricsCollector.
//
// The decorator is stateless apart from its wrapped unit and is safe
// for concurrent use.
type TracedUnit struct {
	next    ports.Unit
	metrics ports.MetricsCollector
}

// NewTracedUnit wraps the given unit with tracing instrumentation.
// The metrics collector may be nil, in which case only spans are emitted.
func NewTracedUnit(next ports.Unit, metrics ports.MetricsCollector) *TracedUnit {
	return &TracedUnit{
		next:    next,
		metrics: metrics,
	}
}

// Name returns the wrapped unit's identifier.
func (tu *TracedUnit) Name() string { return tu.next.Name() }

// Execute runs the wrapped unit inside an OpenTelemetry span.
// The span records the collection's group count and universe size
// before execution and the resulting leaderboard size after. Errors
// from the wrapped unit are recorded on the span and propagated
// unchanged.
func (tu *TracedUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Unit.Execute",
		trace.WithAttributes(attribute.String("unit.name", tu.next.Name())),
	)
	defer span.End()

	labels := map[string]string{"unit": tu.next.Name()}

	if collection, ok := domain.Get(state, domain.KeyCollection); ok {
		universe := 0
		if len(collection) > 0 {
			universe = len(collection[0])
		}
		span.SetAttributes(
			attribute.Int("collection.group_count", len(collection)),
			attribute.Int("collection.universe_size", universe),
		)
		if tu.metrics != nil {
			tu.metrics.RecordGauge("group_count", float64(len(collection)), labels)
			tu.metrics.RecordGauge("universe_size", float64(universe), labels)
		}
	}

	start := time.Now()
	newState, err := tu.next.Execute(ctx, state)
	elapsed := time.Since(start)

	if tu.metrics != nil {
		tu.metrics.RecordLatency("unit_execute", elapsed, labels)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if tu.metrics != nil {
			errLabels := map[string]string{"unit": tu.next.Name(), "status": "error"}
			tu.metrics.RecordCounter("unit_execute", 1, errLabels)
		}
		return newState, err
	}

	if leaderboard, ok := domain.Get(newState, domain.KeyLeaderboard); ok {
		span.SetAttributes(attribute.Int("leaderboard.entries", len(leaderboard)))
	}
	span.SetStatus(codes.Ok, "unit execution completed")
	if tu.metrics != nil {
		tu.metrics.RecordCounter("unit_execute", 1, labels)
	}

	return newState, nil
}

// Validate delegates to the wrapped unit.
func (tu *TracedUnit) Validate() error { return tu.next.Validate() }
