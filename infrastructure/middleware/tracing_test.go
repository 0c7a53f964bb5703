package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// stubUnit is a minimal ports.Unit for decorator tests.
type stubUnit struct {
	name        string
	executeErr  error
	validateErr error
}

func (s *stubUnit) Name() string { return s.name }

func (s *stubUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if s.executeErr != nil {
		return state, s.executeErr
	}
	leaderboard := []domain.Rating{{Name: "A", Score: 13}}
	return domain.With(state, domain.KeyLeaderboard, leaderboard), nil
}

func (s *stubUnit) Validate() error { return s.validateErr }

// recordingCollector captures metric calls for assertions.
type recordingCollector struct {
	latencies []string
	counters  []map[string]string
	gauges    map[string]float64
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{gauges: make(map[string]float64)}
}

func (rc *recordingCollector) RecordLatency(op string, d time.Duration, labels map[string]string) {
	rc.latencies = append(rc.latencies, op)
}

func (rc *recordingCollector) RecordCounter(metric string, v float64, labels map[string]string) {
	rc.counters = append(rc.counters, labels)
}

func (rc *recordingCollector) RecordGauge(metric string, v float64, labels map[string]string) {
	rc.gauges[metric] = v
}

var _ ports.MetricsCollector = (*recordingCollector)(nil)

// TestTracedUnit_Execute verifies that the decorator passes state
// through the wrapped unit and records shape gauges and latency.
func TestTracedUnit_Execute(t *testing.T) {
	collector := newRecordingCollector()
	traced := NewTracedUnit(&stubUnit{name: "sum_pool"}, collector)

	assert.Equal(t, "sum_pool", traced.Name())

	collection := domain.Collection{
		{{Name: "A", Score: 10}, {Name: "B", Score: 5}},
		{{Name: "A", Score: 3}},
	}
	state := domain.With(domain.NewState(), domain.KeyCollection, collection)

	newState, err := traced.Execute(context.Background(), state)
	require.NoError(t, err)

	leaderboard, ok := domain.Get(newState, domain.KeyLeaderboard)
	require.True(t, ok)
	assert.Equal(t, []domain.Rating{{Name: "A", Score: 13}}, leaderboard)

	assert.Equal(t, []string{"unit_execute"}, collector.latencies)
	assert.Equal(t, float64(2), collector.gauges["group_count"])
	assert.Equal(t, float64(2), collector.gauges["universe_size"])

	require.Len(t, collector.counters, 1)
	assert.NotEqual(t, "error", collector.counters[0]["status"])
}

// TestTracedUnit_ExecuteError verifies that wrapped-unit errors are
// propagated unchanged and counted with an error status.
func TestTracedUnit_ExecuteError(t *testing.T) {
	collector := newRecordingCollector()
	wantErr := errors.New("aggregation exploded")
	traced := NewTracedUnit(&stubUnit{name: "sum_pool", executeErr: wantErr}, collector)

	state := domain.With(domain.NewState(), domain.KeyCollection, domain.Collection{})

	_, err := traced.Execute(context.Background(), state)
	require.ErrorIs(t, err, wantErr)

	require.Len(t, collector.counters, 1)
	assert.Equal(t, "error", collector.counters[0]["status"])
}

// TestTracedUnit_NilMetrics verifies that the decorator works without a
// metrics collector.
func TestTracedUnit_NilMetrics(t *testing.T) {
	traced := NewTracedUnit(&stubUnit{name: "sum_pool"}, nil)

	state := domain.With(domain.NewState(), domain.KeyCollection, domain.Collection{})
	_, err := traced.Execute(context.Background(), state)
	assert.NoError(t, err)
}

// TestTracedUnit_ValidateDelegates verifies Validate delegation.
func TestTracedUnit_ValidateDelegates(t *testing.T) {
	wantErr := errors.New("bad config")
	traced := NewTracedUnit(&stubUnit{name: "sum_pool", validateErr: wantErr}, nil)
	assert.ErrorIs(t, traced.Validate(), wantErr)

	traced = NewTracedUnit(&stubUnit{name: "sum_pool"}, nil)
	assert.NoError(t, traced.Validate())
}
