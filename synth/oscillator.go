package synth

import (
	"math"
	"sync/atomic"

	"github.com/gridbeat/gridbeat"
)

type (
	// source produces one mono sample per call; t is the time since the
	// voice was triggered, in seconds. Calls are always sequential, one
	// sample apart, so sources may accumulate phase internally.
	source interface {
		next(t float64) float32
	}

	// sweep interpolates a parameter exponentially from one value to another
	// over a duration, holding the end value afterwards. A zero duration
	// means the parameter is constant at to.
	sweep struct {
		from, to, duration float64
	}

	// oscillator is a phase-accumulating waveform source whose frequency
	// follows a sweep.
	oscillator struct {
		shape gridbeat.Waveform
		freq  sweep
		phase float64
	}

	// noise is a white noise source using the same multiplicative
	// congruential generator as the rest of the synth.
	noise struct {
		seed uint32
	}
)

func constant(value float64) sweep {
	return sweep{from: value, to: value}
}

func (s sweep) value(t float64) float64 {
	if s.duration <= 0 || t >= s.duration {
		return s.to
	}
	if t <= 0 {
		return s.from
	}
	return s.from * math.Pow(s.to/s.from, t/s.duration)
}

func (o *oscillator) next(t float64) float32 {
	o.phase += o.freq.value(t) / gridbeat.SampleRate
	o.phase -= math.Floor(o.phase)
	p := o.phase
	switch o.shape {
	case gridbeat.Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case gridbeat.Sawtooth:
		return float32(2*p - 1)
	case gridbeat.Triangle:
		return float32(1 - 4*math.Abs(p-0.5))
	default: // sine
		return float32(math.Sin(2 * math.Pi * p))
	}
}

var noiseSeed uint32 = 1

// newNoise returns a noise source with a seed unique to this voice, so two
// simultaneous noise-based voices do not correlate.
func newNoise() *noise {
	return &noise{seed: atomic.AddUint32(&noiseSeed, 2654435761)}
}

func (n *noise) next(float64) float32 {
	n.seed *= 16007
	return float32(int32(n.seed)) / -2147483648.0
}
