// Package gauge holds the rolling per-gauge sample history that the
// monitor loop feeds and the renderers read.
package gauge

import (
	"math"
)

// Sample is a single pressure reading. Time is seconds since the Unix
// epoch; Pressure is in mbar and NaN when the gauge gave no reading.
type Sample struct {
	Time     float64 `json:"t"`
	Pressure float64 `json:"p"`
}

// Series is a fixed-capacity circular buffer of the most recent samples
// for one gauge. Slots start out as NaN placeholders and the oldest
// sample is overwritten on every insert. Not safe for concurrent use;
// the polling loop is the only writer.
type Series struct {
	buf  []Sample
	head int // index of the newest sample
}

// NewSeries creates a series with the given capacity, all slots filled
// with missing-reading placeholders.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	buf := make([]Sample, capacity)
	for i := range buf {
		buf[i] = Sample{Time: math.NaN(), Pressure: math.NaN()}
	}
	return &Series{buf: buf}
}

// Cap returns the fixed slot count of the series.
func (s *Series) Cap() int { return len(s.buf) }

// Insert overwrites the oldest slot with a new sample and makes it the
// newest. NaN pressures are stored as-is.
func (s *Series) Insert(t, pressure float64) {
	s.head = (s.head + 1) % len(s.buf)
	s.buf[s.head] = Sample{Time: t, Pressure: pressure}
}

// At returns the i-th newest sample; At(0) is the latest. i must be in
// [0, Cap()).
func (s *Series) At(i int) Sample {
	n := len(s.buf)
	return s.buf[((s.head-i)%n+n)%n]
}

// Latest returns the most recent sample.
func (s *Series) Latest() Sample { return s.buf[s.head] }

// Window copies the last k samples, newest first. k is clamped to Cap().
func (s *Series) Window(k int) []Sample {
	if k > len(s.buf) {
		k = len(s.buf)
	}
	out := make([]Sample, k)
	for i := 0; i < k; i++ {
		out[i] = s.At(i)
	}
	return out
}

// Smooth blends a raw reading against the latest stored value with the
// given old-value weight: (raw + w*prev) / (w+1). With no finite prior
// value the raw reading comes back unchanged.
func (s *Series) Smooth(raw float64, oldWeight float64) float64 {
	prev := s.Latest().Pressure
	if !isFinite(prev) {
		return raw
	}
	return (raw + oldWeight*prev) / (oldWeight + 1)
}

// Trend fits a least-squares line to the valid samples among the last k
// and returns its slope in mbar per second. ok is false when fewer than
// two valid samples are available; the slope is meaningless then.
func (s *Series) Trend(k int) (slope float64, ok bool) {
	if k > len(s.buf) {
		k = len(s.buf)
	}
	var n int
	var sumT, sumP float64
	for i := 0; i < k; i++ {
		smp := s.At(i)
		if !isFinite(smp.Time) || !isFinite(smp.Pressure) {
			continue
		}
		n++
		sumT += smp.Time
		sumP += smp.Pressure
	}
	if n < 2 {
		return 0, false
	}
	meanT := sumT / float64(n)
	meanP := sumP / float64(n)
	var num, den float64
	for i := 0; i < k; i++ {
		smp := s.At(i)
		if !isFinite(smp.Time) || !isFinite(smp.Pressure) {
			continue
		}
		dt := smp.Time - meanT
		num += dt * (smp.Pressure - meanP)
		den += dt * dt
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
