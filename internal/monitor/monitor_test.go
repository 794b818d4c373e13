package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronsgaard/gaugemonitor/internal/gauge"
)

type scriptedSource struct {
	values map[int][]float64
	errs   map[int]error
	calls  []int
}

func (s *scriptedSource) ReadPressure(id int) (float64, error) {
	s.calls = append(s.calls, id)
	if err := s.errs[id]; err != nil {
		return 0, err
	}
	vals := s.values[id]
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	v := vals[0]
	s.values[id] = vals[1:]
	return v, nil
}

type update struct {
	gauge    int
	pressure float64
	trend    float64
}

type recordingSink struct {
	updates []update
}

func (r *recordingSink) UpdateSeries(gauge int, t time.Time, pressure, trend float64) {
	r.updates = append(r.updates, update{gauge, pressure, trend})
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollInsertsAndFansOut(t *testing.T) {
	src := &scriptedSource{values: map[int][]float64{
		1: {100, 200},
		2: {5, 6},
	}}
	sinkA := &recordingSink{}
	sinkB := &recordingSink{}
	store := gauge.NewStore([]int{1, 2}, 200)

	m := New(src, store, []Sink{sinkA, sinkB}, Options{
		Interval:    time.Second,
		TrendWindow: 10,
	}, discard())

	now := time.Unix(1000, 0)
	m.Poll(now)
	m.Poll(now.Add(time.Second))

	// Gauges polled in configured order each cycle.
	assert.Equal(t, []int{1, 2, 1, 2}, src.calls)

	// Both sinks saw every update, in order.
	require.Len(t, sinkA.updates, 4)
	assert.Equal(t, sinkA.updates, sinkB.updates)
	assert.Equal(t, 1, sinkA.updates[0].gauge)
	assert.Equal(t, 100.0, sinkA.updates[0].pressure)

	// Buffer holds both samples for gauge 1.
	s := store.Series(1)
	assert.Equal(t, 200.0, s.Latest().Pressure)
	assert.Equal(t, 100.0, s.At(1).Pressure)
}

func TestPollTrendReachesSinks(t *testing.T) {
	src := &scriptedSource{values: map[int][]float64{1: {100, 200}}}
	sink := &recordingSink{}
	store := gauge.NewStore([]int{1}, 200)
	m := New(src, store, []Sink{sink}, Options{Interval: time.Second, TrendWindow: 10}, discard())

	m.Poll(time.Unix(1, 0))
	m.Poll(time.Unix(2, 0))

	require.Len(t, sink.updates, 2)
	// First cycle: single sample, trend unavailable.
	assert.True(t, math.IsNaN(sink.updates[0].trend))
	// Second cycle: 100 mbar over 1 s.
	assert.InDelta(t, 100.0, sink.updates[1].trend, 1e-9)
}

func TestPollReadErrorBecomesMissingReading(t *testing.T) {
	src := &scriptedSource{
		values: map[int][]float64{},
		errs:   map[int]error{1: errors.New("serial timeout")},
	}
	sink := &recordingSink{}
	store := gauge.NewStore([]int{1}, 200)
	m := New(src, store, []Sink{sink}, Options{Interval: time.Second}, discard())

	m.Poll(time.Unix(1, 0))

	require.Len(t, sink.updates, 1)
	assert.True(t, math.IsNaN(sink.updates[0].pressure))
	assert.True(t, math.IsNaN(store.Series(1).Latest().Pressure))
	// The slot was still consumed.
	assert.Equal(t, 1.0, store.Series(1).Latest().Time)
}

func TestPollSmoothingDampsAgainstHistory(t *testing.T) {
	src := &scriptedSource{values: map[int][]float64{1: {100, 1000}}}
	store := gauge.NewStore([]int{1}, 200)
	m := New(src, store, nil, Options{
		Interval:     time.Second,
		SmoothWeight: 20,
	}, discard())

	m.Poll(time.Unix(1, 0))
	// No history: first reading stored raw.
	assert.Equal(t, 100.0, store.Series(1).Latest().Pressure)

	m.Poll(time.Unix(2, 0))
	want := (1000.0 + 20*100.0) / 21.0
	assert.InDelta(t, want, store.Series(1).Latest().Pressure, 1e-9)
}

func TestRunStopsOnCancel(t *testing.T) {
	src := &scriptedSource{values: map[int][]float64{1: {1, 2, 3, 4, 5}}}
	store := gauge.NewStore([]int{1}, 10)
	m := New(src, store, nil, Options{Interval: time.Millisecond}, discard())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
	assert.NotEmpty(t, src.calls)
}
