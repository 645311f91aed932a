package engine_test

import (
	"testing"

	"github.com/gridbeat/gridbeat"
	"github.com/gridbeat/gridbeat/engine"
)

func TestMixerAudible(t *testing.T) {
	normal := &gridbeat.Track{ID: 1}
	muted := &gridbeat.Track{ID: 2, Muted: true}
	other := &gridbeat.Track{ID: 3}

	m := engine.NewMixer()
	if !m.Audible(normal) || !m.Audible(other) {
		t.Errorf("unmuted tracks must be audible without a solo")
	}
	if m.Audible(muted) {
		t.Errorf("muted track must be silent without a solo")
	}

	m.ToggleSolo(2)
	if !m.Audible(muted) {
		t.Errorf("soloed track must be audible even when muted")
	}
	if m.Audible(normal) || m.Audible(other) {
		t.Errorf("solo must silence every other track")
	}

	m.ToggleSolo(2)
	if m.Solo != -1 {
		t.Errorf("toggling the soloed track must clear the solo, got %v", m.Solo)
	}
	if !m.Audible(normal) || m.Audible(muted) {
		t.Errorf("clearing the solo must restore mute behaviour")
	}
}
