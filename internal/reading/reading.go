package reading

import (
	"math"
	"time"
)

// TimeFormat is the timestamp layout used in log files and console output.
const TimeFormat = "2006-01-02 15:04:05.000000"

// Reading is a single processed gauge reading suitable for JSON and MQTT.
// Pointer fields serialize as null when the value is unavailable.
type Reading struct {
	Gauge    int      `json:"gauge"`            // gauge channel number
	Time     float64  `json:"t"`                // seconds since epoch
	Date     string   `json:"date"`             // formatted with TimeFormat
	Pressure *float64 `json:"pressure_mbar"`    // null on a missing reading
	Trend    *float64 `json:"trend_mbar_per_s"` // null with insufficient history
}

// New builds a Reading from raw values, mapping NaN pressure and the
// trend-unavailable case to null JSON fields.
func New(gauge int, t time.Time, pressure float64, trend float64, haveTrend bool) Reading {
	r := Reading{
		Gauge: gauge,
		Time:  float64(t.UnixNano()) * 1e-9,
		Date:  t.Format(TimeFormat),
	}
	if !math.IsNaN(pressure) {
		p := pressure
		r.Pressure = &p
	}
	if haveTrend {
		g := trend
		r.Trend = &g
	}
	return r
}

// PressureValue returns the pressure, or NaN when the reading was missing.
func (r Reading) PressureValue() float64 {
	if r.Pressure == nil {
		return math.NaN()
	}
	return *r.Pressure
}

// TrendValue returns the trend slope, or NaN when unavailable.
func (r Reading) TrendValue() float64 {
	if r.Trend == nil {
		return math.NaN()
	}
	return *r.Trend
}
