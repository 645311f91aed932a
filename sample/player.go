package sample

import (
	"errors"
	"fmt"
	"math"

	"github.com/gridbeat/gridbeat"
)

// releaseTail is the extra play length, in seconds, given to sample hits
// beyond their note duration so they do not cut off exactly on the next step.
const releaseTail = 0.1

var c4Freq = func() float64 {
	f, _ := gridbeat.Note("C4").Frequency()
	return f
}()

// Playback is one scheduled playback window of a cached asset, resampled by
// linear interpolation. It implements the same Renderer contract as a synth
// voice: sequential windows, adding into the bus.
type Playback struct {
	buf  gridbeat.AudioBuffer
	pos  float64 // source frame position
	step float64 // source frames per output frame
}

// Render adds the resampled source to the stereo bus, going silent when the
// source runs out.
func (p *Playback) Render(l, r []float32, at int) {
	for i := range l {
		i0 := int(p.pos)
		if i0 < 0 || i0 >= len(p.buf)-1 {
			return
		}
		frac := float32(p.pos - float64(i0))
		s0, s1 := p.buf[i0], p.buf[i0+1]
		l[i] += s0[0] + (s1[0]-s0[0])*frac
		r[i] += s0[1] + (s1[1]-s0[1])*frac
		p.pos += p.step
	}
}

// NoteRate computes the playback rate of a grid hit on a sample track: the
// pitch ratio against C4 when a melodic note overrides the hit, otherwise
// the varispeed rate that fits the trimmed sample into the note duration
// (which also shifts its pitch; that coupling is intentional).
func NoteRate(t *gridbeat.Track, asset *Asset, note gridbeat.Note, noteDur float64) (float64, error) {
	if note != "" {
		f, err := note.Frequency()
		if err != nil {
			return 0, err
		}
		return f / c4Freq, nil
	}
	clamped := (t.TrimEnd - t.TrimStart) * asset.Seconds()
	if clamped <= 0 || noteDur <= 0 {
		return 0, errors.New("empty sample window")
	}
	return clamped / noteDur, nil
}

// NewNoteVoice schedules one grid hit of a sample track: playback starts at
// the trim offset and runs for the note duration plus a short tail. The
// returned frame count is the voice lifetime at the engine rate.
func NewNoteVoice(t *gridbeat.Track, asset *Asset, note gridbeat.Note, noteDur float64) (*Playback, int, error) {
	rate, err := NoteRate(t, asset, note, noteDur)
	if err != nil {
		return nil, 0, fmt.Errorf("sample voice: %w", err)
	}
	frames := int(math.Round((noteDur + releaseTail) * gridbeat.SampleRate))
	return &Playback{
		buf:  asset.Buffer,
		pos:  t.TrimStart * float64(len(asset.Buffer)),
		step: rate * float64(asset.Rate) / gridbeat.SampleRate,
	}, frames, nil
}

// NewClipVoice schedules one audio-lane clip: playback starts at the clip's
// source offset and runs for the clip duration. The track's semitone shift
// is folded into the rate, coupling speed and pitch (varispeed).
func NewClipVoice(t *gridbeat.Track, asset *Asset, clip gridbeat.Clip, stepSeconds float64) (*Playback, int) {
	rate := math.Exp2(t.Semitones / 12)
	frames := int(math.Round(clip.DurationSteps * stepSeconds * gridbeat.SampleRate))
	return &Playback{
		buf:  asset.Buffer,
		pos:  clip.Offset * float64(asset.Rate),
		step: rate * float64(asset.Rate) / gridbeat.SampleRate,
	}, frames
}
