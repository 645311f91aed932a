package synth

import (
	"github.com/mjibson/go-dsp/fft"
)

// convolverBlock is the partition size of the reverb convolver. The send bus
// is convolved with the impulse response in uniform partitions of this many
// samples, trading one block of latency for per-sample cost that no longer
// depends on the impulse length.
const convolverBlock = 2048

// Convolver convolves a send bus with one channel of an impulse response
// using uniformly partitioned FFT convolution with overlap-add.
type Convolver struct {
	block   int
	wet     float32
	parts   [][]complex128 // impulse partition spectra, FFT size 2*block
	history [][]complex128 // ring of past input block spectra
	histPos int
	inBuf   []float64
	inFill  int
	overlap []float64
	out     []float64
	outPos  int
}

// NewConvolver prepares a convolver for the given impulse channel and wet
// level.
func NewConvolver(impulse []float32, wet float64) *Convolver {
	block := convolverBlock
	numParts := (len(impulse) + block - 1) / block
	if numParts < 1 {
		numParts = 1
	}
	parts := make([][]complex128, numParts)
	for k := range parts {
		x := make([]float64, 2*block)
		for j := 0; j < block; j++ {
			if i := k*block + j; i < len(impulse) {
				x[j] = float64(impulse[i])
			}
		}
		parts[k] = fft.FFTReal(x)
	}
	return &Convolver{
		block:   block,
		wet:     float32(wet),
		parts:   parts,
		history: make([][]complex128, numParts),
		inBuf:   make([]float64, block),
		overlap: make([]float64, block),
	}
}

// Mix feeds the bus through the convolver and sums the wet signal back into
// the bus in place. The wet signal lags the dry by one partition, which is
// inaudible for a reverb tail.
func (c *Convolver) Mix(bus []float32) {
	for i := range bus {
		c.inBuf[c.inFill] = float64(bus[i])
		c.inFill++
		if c.outPos < len(c.out) {
			bus[i] += c.wet * float32(c.out[c.outPos])
			c.outPos++
		}
		if c.inFill == c.block {
			c.processBlock()
		}
	}
}

func (c *Convolver) processBlock() {
	x := make([]float64, 2*c.block)
	copy(x, c.inBuf)
	c.inFill = 0
	c.histPos = (c.histPos + 1) % len(c.history)
	c.history[c.histPos] = fft.FFTReal(x)
	acc := make([]complex128, 2*c.block)
	for k, part := range c.parts {
		h := c.history[(c.histPos-k+len(c.history))%len(c.history)]
		if h == nil {
			continue
		}
		for j := range acc {
			acc[j] += h[j] * part[j]
		}
	}
	y := fft.IFFT(acc)
	if c.outPos == len(c.out) {
		c.out = c.out[:0]
		c.outPos = 0
	}
	for j := 0; j < c.block; j++ {
		c.out = append(c.out, real(y[j])+c.overlap[j])
		c.overlap[j] = real(y[c.block+j])
	}
}
