// Package synth builds the ephemeral per-note signal chains of the sequencer:
// oscillator and noise sources, shaping filters, amplitude envelopes, and the
// per-track delay and convolution-reverb sends. A chain is created for one
// trigger, rendered sample by sample into its track bus, and discarded.
package synth

import (
	"math"

	"github.com/gridbeat/gridbeat"
)

// envFloor is the smallest level the exponential envelope segments target;
// an exponential ramp can never reach exactly zero.
const envFloor = 1e-4

// Envelope computes the amplitude-vs-time curve of a triggered voice: linear
// ramp 0→1 over Attack, exponential 1→Sustain over Decay, hold at Sustain
// until the gate closes, then exponential to ~0 over Release. All fields come
// pre-clamped from gridbeat.ADSR.Clamped.
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// NewEnvelope clamps the ADSR parameters and returns the envelope.
func NewEnvelope(a gridbeat.ADSR) Envelope {
	a = a.Clamped()
	return Envelope{Attack: a.Attack, Decay: a.Decay, Sustain: a.Sustain, Release: a.Release}
}

// Lifetime returns the total length of a voice in seconds for the given gate
// length: the sustain gate plus the release tail.
func (e Envelope) Lifetime(gate float64) float64 {
	return gate + e.Release
}

// Level returns the envelope level at time t since the trigger, with the gate
// closing at time gate. Beyond Lifetime the level is 0.
func (e Envelope) Level(t, gate float64) float64 {
	if t < 0 || t >= e.Lifetime(gate) {
		return 0
	}
	if t >= gate {
		from := e.held(gate)
		if from <= envFloor {
			return 0
		}
		u := (t - gate) / e.Release
		return from * math.Pow(envFloor/from, u)
	}
	return e.held(t)
}

// held is the envelope level before the gate closes.
func (e Envelope) held(t float64) float64 {
	if t < e.Attack {
		return t / e.Attack
	}
	t -= e.Attack
	if t < e.Decay {
		s := math.Max(e.Sustain, envFloor)
		return math.Pow(s, t/e.Decay)
	}
	return e.Sustain
}
