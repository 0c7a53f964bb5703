// Package middleware provides cross-cutting concerns for the tally engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides monitoring of aggregation throughput, execution
// performance, and collection shape for the tally engine.
type PrometheusMetrics struct {
	aggregationsTotal *prometheus.CounterVec
	executionLatency  *prometheus.HistogramVec
	collectionGauges  *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		aggregationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_aggregations_total",
				Help: "Total number of aggregation operations performed.",
			},
			[]string{"operation", "status", "unit"},
		),
		executionLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_execution_duration_seconds",
				Help:    "Execution time of tally operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "unit"},
		),
		collectionGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tally_collection_shape",
				Help: "Shape of the most recently aggregated collection (group count, universe size).",
			},
			[]string{"metric", "unit"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	unit, ok := labels["unit"]
	if !ok {
		unit = "unknown"
	}
	pm.executionLatency.WithLabelValues(operation, unit).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	unit, ok := labels["unit"]
	if !ok {
		unit = "unknown"
	}

	status, ok := labels["status"]
	if !ok {
		status = "success"
	}
	pm.aggregationsTotal.WithLabelValues(metric, status, unit).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	unit, ok := labels["unit"]
	if !ok {
		unit = "unknown"
	}
	pm.collectionGauges.WithLabelValues(metric, unit).Set(value)
}
