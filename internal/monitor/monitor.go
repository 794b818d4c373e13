// Package monitor runs the sequential polling loop: read each gauge,
// insert into its rolling series, estimate the trend, and hand the
// result to every sink.
package monitor

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/tronsgaard/gaugemonitor/internal/gauge"
	"github.com/tronsgaard/gaugemonitor/internal/reading"
	"github.com/tronsgaard/gaugemonitor/internal/tic"
)

// Sink receives each processed sample. Trend is NaN when there is not
// enough history for an estimate. Calls arrive in poll order, one gauge
// at a time; implementations must not block for long.
type Sink interface {
	UpdateSeries(gauge int, t time.Time, pressure, trend float64)
}

// Options tune the polling loop.
type Options struct {
	Interval    time.Duration
	TrendWindow int
	// SmoothWeight damps raw readings against the latest stored value
	// before insertion. Zero disables smoothing; it is only wanted for
	// the emulated source, whose noise is otherwise uncorrelated.
	SmoothWeight float64
}

// Monitor owns one series per gauge and polls them sequentially.
// It is the only writer of the series it owns.
type Monitor struct {
	source tic.Source
	store  *gauge.Store
	sinks  []Sink
	opts   Options
	logger *slog.Logger
}

// New builds a monitor over the given store. The store's gauge set
// defines what gets polled.
func New(source tic.Source, store *gauge.Store, sinks []Sink, opts Options, logger *slog.Logger) *Monitor {
	if opts.TrendWindow < 2 {
		opts.TrendWindow = 10
	}
	return &Monitor{
		source: source,
		store:  store,
		sinks:  sinks,
		opts:   opts,
		logger: logger,
	}
}

// Store exposes the rolling series, for callers that render directly.
func (m *Monitor) Store() *gauge.Store { return m.store }

// Run polls until the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	m.logger.Info("polling started",
		"gauges", len(m.store.IDs()),
		"interval", m.opts.Interval,
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("polling stopped", "reason", ctx.Err())
			return nil
		case now := <-ticker.C:
			m.Poll(now)
		}
	}
}

// Poll runs one polling cycle at the given wall-clock time.
func (m *Monitor) Poll(now time.Time) {
	for _, id := range m.store.IDs() {
		series := m.store.Series(id)

		pressure, err := m.source.ReadPressure(id)
		if err != nil {
			// Link failures must not disturb the buffer beyond a
			// missing-reading slot for this cycle.
			m.logger.Error("gauge read failed", "gauge", id, "err", err)
			pressure = math.NaN()
		} else if m.opts.SmoothWeight > 0 {
			pressure = series.Smooth(pressure, m.opts.SmoothWeight)
		}

		t := float64(now.UnixNano()) * 1e-9
		series.Insert(t, pressure)

		trend, ok := series.Trend(m.opts.TrendWindow)
		if !ok {
			trend = math.NaN()
		}

		m.logger.Info("reading",
			"gauge", id,
			"time", now.Format(reading.TimeFormat),
			"pressure_mbar", pressure,
		)

		for _, sink := range m.sinks {
			sink.UpdateSeries(id, now, pressure, trend)
		}
	}
}
