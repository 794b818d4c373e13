// Package tic talks to an Edwards TIC vacuum-gauge controller over its
// RS-232 ASCII protocol, and provides an emulated stand-in for bench use.
package tic

// Source is anything that can produce a pressure reading for a gauge
// channel. A NaN value with a nil error means the controller answered
// but the gauge has no valid reading (off, striking, over-range); that
// is an expected condition, not an error. Errors are reserved for link
// and protocol failures.
type Source interface {
	ReadPressure(gauge int) (float64, error)
}
