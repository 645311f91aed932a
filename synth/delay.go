package synth

import "github.com/gridbeat/gridbeat"

// Delay is a stereo feedback delay line used as a per-track send effect. The
// line keeps recirculating after the dry signal has ended, so delayed repeats
// ring out naturally when the transport stops.
type Delay struct {
	buffer   [][2]float32
	pos      int
	feedback float32
	wet      float32
}

// NewDelay returns a delay line of the given length in seconds.
func NewDelay(seconds, feedback, wet float64) *Delay {
	frames := int(gridbeat.SampleRate * seconds)
	if frames < 1 {
		frames = 1
	}
	return &Delay{
		buffer:   make([][2]float32, frames),
		feedback: float32(feedback),
		wet:      float32(wet),
	}
}

// Mix feeds the bus through the delay line and sums the wet signal back into
// the bus in place.
func (d *Delay) Mix(l, r []float32) {
	for i := range l {
		delayed := d.buffer[d.pos]
		d.buffer[d.pos] = [2]float32{
			l[i] + d.feedback*delayed[0],
			r[i] + d.feedback*delayed[1],
		}
		d.pos++
		if d.pos >= len(d.buffer) {
			d.pos = 0
		}
		l[i] += d.wet * delayed[0]
		r[i] += d.wet * delayed[1]
	}
}
