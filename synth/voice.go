package synth

import "github.com/gridbeat/gridbeat"

type (
	// Renderer is one ephemeral sound being rendered into a track bus. The
	// engine calls Render with consecutive windows of the voice's lifetime:
	// at is the frame offset of l[0] from the voice start, and successive
	// calls always continue where the previous one stopped. Renderers add
	// into the bus, they never overwrite it.
	Renderer interface {
		Render(l, r []float32, at int)
	}

	// amplitude is the gain curve of one chain component.
	amplitude interface {
		level(t float64) float64
	}

	// component is one source of a voice with its shaping filters and gain
	// curve. A voice sums the outputs of all its components.
	component struct {
		src     source
		filters []*filter
		amp     amplitude
	}

	// Voice is a disposable per-note signal chain: one or two components
	// rendered for Frames frames and then discarded. It is owned by whoever
	// created it and holds no shared state.
	Voice struct {
		comps  []component
		Frames int
	}

	// gate applies an ADSR envelope opened for a fixed sustain length.
	gate struct {
		env    Envelope
		length float64
	}
)

func (g gate) level(t float64) float64 { return g.env.Level(t, g.length) }

func (s sweep) level(t float64) float64 { return s.value(t) }

// Render adds the voice's output to the stereo bus. The chain is mono; the
// same sample goes to both channels.
func (v *Voice) Render(l, r []float32, at int) {
	for i := range l {
		t := float64(at+i) / gridbeat.SampleRate
		var sum float32
		for ci := range v.comps {
			c := &v.comps[ci]
			s := c.src.next(t)
			for _, f := range c.filters {
				s = f.process(s, t)
			}
			sum += s * float32(c.amp.level(t))
		}
		l[i] += sum
		r[i] += sum
	}
}
