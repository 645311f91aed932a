package synth

import (
	"math"

	"github.com/gridbeat/gridbeat"
)

type filterMode int

const (
	lowpass filterMode = iota
	bandpass
	highpass
)

// filter is a state-variable filter with a sweepable cutoff. damp is the
// damping factor, 1/Q.
type filter struct {
	mode      filterMode
	freq      sweep
	damp      float64
	low, band float64
}

func newFilter(mode filterMode, freq sweep, q float64) *filter {
	if q <= 0 {
		q = 1
	}
	return &filter{mode: mode, freq: freq, damp: 1 / q}
}

func (f *filter) process(in float32, t float64) float32 {
	fc := f.freq.value(t)
	g := 2 * math.Sin(math.Pi*fc/gridbeat.SampleRate)
	// the Chamberlin update diverges for coefficients above 1
	if g > 1 {
		g = 1
	}
	f.low += g * f.band
	high := float64(in) - f.low - f.damp*f.band
	f.band += g * high
	switch f.mode {
	case lowpass:
		return float32(f.low)
	case bandpass:
		return float32(f.band)
	default:
		return float32(high)
	}
}
