package synth

import (
	"math"

	"github.com/gridbeat/gridbeat"
)

// Impulse synthesizes a stereo reverb impulse response: each channel is
// uniform random noise in (-1,1) shaped by the decay curve (1 - n/length)^decay.
// The channels are generated with independent random draws so the stereo
// image stays decorrelated.
func Impulse(duration, decay float64) gridbeat.AudioBuffer {
	length := int(gridbeat.SampleRate * duration)
	if length < 1 {
		length = 1
	}
	left := noise{seed: 0x9e3779b9}
	right := noise{seed: 0x85ebca6b}
	buf := make(gridbeat.AudioBuffer, length)
	for n := range buf {
		env := float32(math.Pow(1-float64(n)/float64(length), decay))
		buf[n][0] = left.next(0) * env
		buf[n][1] = right.next(0) * env
	}
	return buf
}
