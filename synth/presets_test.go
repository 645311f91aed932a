package synth

import (
	"math"
	"testing"

	"github.com/gridbeat/gridbeat"
)

func renderAll(v *Voice) (l, r []float32) {
	l = make([]float32, v.Frames)
	r = make([]float32, v.Frames)
	// render in two windows to exercise the at offset
	half := v.Frames / 2
	v.Render(l[:half], r[:half], 0)
	v.Render(l[half:], r[half:], half)
	return l, r
}

func rms(buf []float32) float64 {
	var acc float64
	for _, s := range buf {
		acc += float64(s) * float64(s)
	}
	return math.Sqrt(acc / float64(len(buf)))
}

func TestNewVoicePresets(t *testing.T) {
	tests := []struct {
		preset gridbeat.Preset
		frames int // 0 means gate + release
	}{
		{gridbeat.PresetKick, int(kickLength * gridbeat.SampleRate)},
		{gridbeat.PresetSnare, int(snareLength * gridbeat.SampleRate)},
		{gridbeat.PresetHiHat, int(hihatLength * gridbeat.SampleRate)},
		{gridbeat.PresetPiano, 0},
		{gridbeat.PresetGuitar, 0},
		{gridbeat.PresetBass, 0},
		{gridbeat.PresetDefault, 0},
	}
	gate := 0.25
	for _, test := range tests {
		track := &gridbeat.Track{
			Kind:     gridbeat.KindSynth,
			Preset:   test.preset,
			Envelope: gridbeat.DefaultADSR,
		}
		v, err := NewVoice(track, "A4", gate)
		if err != nil {
			t.Fatalf("NewVoice(%q) returned error: %v", test.preset, err)
		}
		want := test.frames
		if want == 0 {
			want = int((gate + gridbeat.DefaultADSR.Release) * gridbeat.SampleRate)
		}
		if v.Frames != want {
			t.Errorf("NewVoice(%q).Frames = %v, expected %v", test.preset, v.Frames, want)
		}
		l, r := renderAll(v)
		if rms(l) < 1e-4 {
			t.Errorf("NewVoice(%q) rendered silence", test.preset)
		}
		for i := range l {
			if l[i] != r[i] {
				t.Fatalf("NewVoice(%q) not centered at frame %v", test.preset, i)
			}
		}
	}
}

func TestNewVoiceDefaultsToSine(t *testing.T) {
	track := &gridbeat.Track{Kind: gridbeat.KindSynth, Envelope: gridbeat.DefaultADSR}
	v, err := NewVoice(track, "A4", 0.1)
	if err != nil {
		t.Fatalf("NewVoice returned error: %v", err)
	}
	l, _ := renderAll(v)
	// a sine at full level peaks near 1 and stays bounded
	var peak float64
	for _, s := range l {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak > 1.01 || peak < 0.5 {
		t.Errorf("sine peak = %v", peak)
	}
}

func TestNewVoiceInvalidNote(t *testing.T) {
	track := &gridbeat.Track{Kind: gridbeat.KindSynth, Envelope: gridbeat.DefaultADSR}
	if _, err := NewVoice(track, "X9", 0.1); err == nil {
		t.Errorf("expected an error for an unparseable note")
	}
}

// Drum presets ignore the note entirely, so even an invalid note must play.
func TestDrumVoiceIgnoresNote(t *testing.T) {
	track := &gridbeat.Track{Kind: gridbeat.KindSynth, Preset: gridbeat.PresetKick}
	v, err := NewVoice(track, "", 0.1)
	if err != nil {
		t.Fatalf("NewVoice(kick, empty note) returned error: %v", err)
	}
	l, _ := renderAll(v)
	if rms(l) < 1e-4 {
		t.Errorf("kick rendered silence")
	}
}
