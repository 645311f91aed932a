package engine

import "github.com/gridbeat/gridbeat"

// Mixer decides which tracks sound. Solo holds the ID of the soloed track,
// or a negative value when no track is soloed.
type Mixer struct {
	Solo int
}

func NewMixer() *Mixer {
	return &Mixer{Solo: -1}
}

// Audible reports whether a track contributes to the mix: the soloed track
// always does, every other track does only when nothing is soloed and it is
// not muted.
func (m *Mixer) Audible(t *gridbeat.Track) bool {
	if m.Solo >= 0 {
		return t.ID == m.Solo
	}
	return !t.Muted
}

// ToggleSolo solos the track, or clears the solo if it is already soloed.
func (m *Mixer) ToggleSolo(trackID int) {
	if m.Solo == trackID {
		m.Solo = -1
		return
	}
	m.Solo = trackID
}
