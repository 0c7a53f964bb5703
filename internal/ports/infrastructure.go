package ports

import (
	"time"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like aggregations performed,
	// errors, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like collection size or
	// aggregation universe size.
	RecordGauge(metric string, value float64, labels map[string]string)
}
