package gauge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeriesStartsEmpty(t *testing.T) {
	s := NewSeries(5)
	assert.Equal(t, 5, s.Cap())
	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(s.At(i).Pressure), "slot %d should be NaN", i)
		assert.True(t, math.IsNaN(s.At(i).Time), "slot %d time should be NaN", i)
	}
}

func TestInsertKeepsFixedCapacityAndEvictsOldest(t *testing.T) {
	const capacity = 4
	s := NewSeries(capacity)

	// Insert more than capacity; the oldest surviving sample after N
	// inserts must be the (N-C+1)-th inserted one.
	const n = 10
	for i := 1; i <= n; i++ {
		s.Insert(float64(i), float64(i)*10)
	}

	assert.Equal(t, capacity, s.Cap())
	assert.Equal(t, float64(n), s.Latest().Time)
	oldest := s.At(capacity - 1)
	assert.Equal(t, float64(n-capacity+1), oldest.Time)
}

func TestInsertAcceptsNaN(t *testing.T) {
	s := NewSeries(3)
	s.Insert(1.0, math.NaN())
	assert.Equal(t, 1.0, s.Latest().Time)
	assert.True(t, math.IsNaN(s.Latest().Pressure))
}

func TestSmoothEmptyHistoryReturnsRaw(t *testing.T) {
	s := NewSeries(10)
	assert.Equal(t, 123.456, s.Smooth(123.456, 20))
}

func TestSmoothAfterMissingReadingReturnsRaw(t *testing.T) {
	s := NewSeries(10)
	s.Insert(1.0, 500.0)
	s.Insert(2.0, math.NaN())
	assert.Equal(t, 42.0, s.Smooth(42.0, 20))
}

func TestSmoothBlendsBetweenRawAndPrev(t *testing.T) {
	tests := []struct {
		name   string
		prev   float64
		raw    float64
		weight float64
	}{
		{"raw above prev", 100, 200, 20},
		{"raw below prev", 800, 100, 20},
		{"heavy damping", 100, 1000, 31},
		{"light damping", 100, 1000, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSeries(10)
			s.Insert(1.0, tt.prev)
			got := s.Smooth(tt.raw, tt.weight)
			lo, hi := tt.prev, tt.raw
			if lo > hi {
				lo, hi = hi, lo
			}
			assert.GreaterOrEqual(t, got, lo)
			assert.LessOrEqual(t, got, hi)
			want := (tt.raw + tt.weight*tt.prev) / (tt.weight + 1)
			assert.InDelta(t, want, got, 1e-12)
		})
	}
}

func TestTrendRecoversLinearSlope(t *testing.T) {
	s := NewSeries(200)
	// p(t) = 3 + 7.5*t
	for i := 0; i < 20; i++ {
		ts := 1000.0 + float64(i)*0.5
		s.Insert(ts, 3+7.5*ts)
	}
	slope, ok := s.Trend(10)
	require.True(t, ok)
	assert.InDelta(t, 7.5, slope, 1e-9)
}

func TestTrendSkipsMissingReadings(t *testing.T) {
	s := NewSeries(200)
	for i := 0; i < 10; i++ {
		ts := float64(i)
		if i%3 == 0 {
			s.Insert(ts, math.NaN())
			continue
		}
		s.Insert(ts, 2*ts)
	}
	slope, ok := s.Trend(10)
	require.True(t, ok)
	assert.InDelta(t, 2.0, slope, 1e-9)
}

func TestTrendUnavailableWithTooFewSamples(t *testing.T) {
	s := NewSeries(200)
	_, ok := s.Trend(10)
	assert.False(t, ok, "empty series must report no trend")

	s.Insert(1.0, 100.0)
	_, ok = s.Trend(10)
	assert.False(t, ok, "single sample must report no trend")

	s.Insert(2.0, math.NaN())
	_, ok = s.Trend(10)
	assert.False(t, ok, "NaN does not count as a valid sample")
}

func TestTrendUnavailableWithZeroTimeSpread(t *testing.T) {
	s := NewSeries(200)
	s.Insert(5.0, 100.0)
	s.Insert(5.0, 200.0)
	_, ok := s.Trend(10)
	assert.False(t, ok)
}

func TestTrendEndToEnd(t *testing.T) {
	s := NewSeries(200)
	s.Insert(1, 100.0)
	s.Insert(2, 200.0)
	slope, ok := s.Trend(10)
	require.True(t, ok)
	assert.InDelta(t, 100.0, slope, 1e-9)
}

func TestWindowNewestFirst(t *testing.T) {
	s := NewSeries(5)
	for i := 1; i <= 3; i++ {
		s.Insert(float64(i), float64(i))
	}
	w := s.Window(2)
	require.Len(t, w, 2)
	assert.Equal(t, 3.0, w[0].Time)
	assert.Equal(t, 2.0, w[1].Time)

	w = s.Window(100)
	assert.Len(t, w, 5)
}

func TestStore(t *testing.T) {
	st := NewStore([]int{1, 2, 5}, 50)
	assert.Equal(t, []int{1, 2, 5}, st.IDs())
	require.NotNil(t, st.Series(5))
	assert.Equal(t, 50, st.Series(5).Cap())
	assert.Nil(t, st.Series(3))

	// Series are independent per gauge.
	st.Series(1).Insert(1.0, 10.0)
	assert.True(t, math.IsNaN(st.Series(2).Latest().Pressure))
}
