package synth

import (
	"fmt"

	"github.com/gridbeat/gridbeat"
)

// Per-instrument recipe constants. The drum presets use fixed envelopes and
// ignore both the note and the track ADSR; the pitched presets hold for the
// gate and release of the track envelope.
const (
	kickLength    = 0.5
	kickClick     = 0.02
	snareLength   = 0.2
	snareTone     = 0.1
	hihatLength   = 0.05
	guitarDamp    = 0.2
	bassCutoff    = 500.0
	sweepTail     = 0.01 // exponential sweeps end here instead of zero
	hihatBandHz   = 10000.0
	hihatHighHz   = 7000.0
	snareHighHz   = 1000.0
	guitarFromHz  = 3000.0
	guitarToHz    = 500.0
	kickBodyHz    = 150.0
	kickClickFrom = 3000.0
	kickClickTo   = 100.0
)

// NewVoice builds the signal chain for one trigger of a synth track. gate is
// the sustain length in seconds (note duration in steps times the step
// length). The returned voice's Frames covers the full audible lifetime,
// including release or drum decay.
func NewVoice(t *gridbeat.Track, note gridbeat.Note, gateLen float64) (*Voice, error) {
	switch t.Preset {
	case gridbeat.PresetKick:
		return drumVoice(kickLength,
			component{
				src: &oscillator{freq: sweep{kickBodyHz, sweepTail, kickLength}},
				amp: sweep{1, sweepTail, kickLength},
			},
			component{
				src: &oscillator{freq: sweep{kickClickFrom, kickClickTo, kickClick}},
				amp: sweep{0.5, sweepTail, kickClick},
			}), nil
	case gridbeat.PresetSnare:
		return drumVoice(snareLength,
			component{
				src:     newNoise(),
				filters: []*filter{newFilter(highpass, constant(snareHighHz), 1)},
				amp:     sweep{1, sweepTail, snareLength},
			},
			component{
				src: &oscillator{shape: gridbeat.Triangle, freq: sweep{250, 100, snareTone}},
				amp: sweep{0.5, sweepTail, snareTone},
			}), nil
	case gridbeat.PresetHiHat:
		return drumVoice(hihatLength,
			component{
				src: newNoise(),
				filters: []*filter{
					newFilter(bandpass, constant(hihatBandHz), 1),
					newFilter(highpass, constant(hihatHighHz), 1),
				},
				amp: sweep{0.6, sweepTail, hihatLength},
			}), nil
	}
	freq, err := note.Frequency()
	if err != nil {
		return nil, fmt.Errorf("building voice: %w", err)
	}
	env := NewEnvelope(t.Envelope)
	g := gate{env: env, length: gateLen}
	frames := int(env.Lifetime(gateLen) * gridbeat.SampleRate)
	var c component
	switch t.Preset {
	case gridbeat.PresetGuitar:
		// sawtooth with a closing lowpass, the "pluck" damping
		c = component{
			src:     &oscillator{shape: gridbeat.Sawtooth, freq: constant(freq)},
			filters: []*filter{newFilter(lowpass, sweep{guitarFromHz, guitarToHz, guitarDamp}, 1)},
			amp:     g,
		}
	case gridbeat.PresetPiano:
		c = component{
			src: &oscillator{shape: gridbeat.Triangle, freq: constant(freq)},
			amp: g,
		}
	case gridbeat.PresetBass:
		c = component{
			src:     &oscillator{shape: gridbeat.Square, freq: constant(freq)},
			filters: []*filter{newFilter(lowpass, constant(bassCutoff), 1)},
			amp:     g,
		}
	default:
		shape := t.Waveform
		if shape == "" {
			shape = gridbeat.Sine
		}
		c = component{
			src: &oscillator{shape: shape, freq: constant(freq)},
			amp: g,
		}
	}
	return &Voice{comps: []component{c}, Frames: frames}, nil
}

func drumVoice(length float64, comps ...component) *Voice {
	return &Voice{comps: comps, Frames: int(length * gridbeat.SampleRate)}
}
