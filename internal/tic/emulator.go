package tic

import (
	"math/rand"
)

// Emulator is a Source that fabricates readings for bench runs without
// hardware: uniform noise over the rough-vacuum range. The monitor loop
// damps it against recent history, so traces look like a noisy gauge
// rather than white noise.
type Emulator struct {
	rand *rand.Rand
}

// NewEmulator creates an emulated source with a deterministic seed.
func NewEmulator(seed int64) *Emulator {
	return &Emulator{rand: rand.New(rand.NewSource(seed))}
}

// ReadPressure returns the next emulated pressure in mbar, in [0, 1050).
func (e *Emulator) ReadPressure(gauge int) (float64, error) {
	return 1050 * e.rand.Float64(), nil
}
