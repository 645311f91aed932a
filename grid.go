package gridbeat

type (
	// Grid is the dense step×track matrix of note placements: grid[step][track]
	// holds the duration of the note starting at that step, in steps, with 0
	// meaning silence. A note starting at step s with duration d owns steps
	// s..s+d-1; the owned steps after s are covered and never hold a non-zero
	// value themselves. SetNote maintains this invariant by truncation.
	Grid [][]int

	// SequenceEvent is the sparse persisted form of one grid cell. A Grid and
	// its []SequenceEvent convert losslessly back and forth; events that fall
	// outside the grid bounds are dropped when converting back.
	SequenceEvent struct {
		Track    int `yaml:"track" json:"track"`
		Step     int `yaml:"step" json:"step"`
		Duration int `yaml:"duration" json:"duration"`
	}
)

// NewGrid returns an all-silent grid with the given dimensions.
func NewGrid(steps, tracks int) Grid {
	g := make(Grid, steps)
	for i := range g {
		g[i] = make([]int, tracks)
	}
	return g
}

// Steps returns the number of steps in the grid.
func (g Grid) Steps() int { return len(g) }

// NumTracks returns the number of track columns in the grid.
func (g Grid) NumTracks() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Get returns the duration at the given cell, or 0 if the cell is out of
// bounds.
func (g Grid) Get(step, track int) int {
	if step < 0 || step >= len(g) || track < 0 || track >= len(g[step]) {
		return 0
	}
	return g[step][track]
}

// SetNote places a note of the given duration at the cell, clamping the
// placement so that no two notes of the same track ever overlap: the duration
// is truncated to end right before the next note in the track, and if the
// step is currently covered by an earlier note, that note is shortened to end
// right before it. Duration 0 clears the cell.
func (g Grid) SetNote(step, track, duration int) {
	if step < 0 || step >= len(g) || track < 0 || track >= len(g[step]) {
		return
	}
	if duration < 0 {
		duration = 0
	}
	if max := len(g) - step; duration > max {
		duration = max
	}
	if duration > 0 {
		// only the nearest earlier note can cover this step
		for s := step - 1; s >= 0; s-- {
			if d := g[s][track]; d > 0 {
				if s+d > step {
					g[s][track] = step - s
				}
				break
			}
		}
		for s := step + 1; s < step+duration; s++ {
			if g[s][track] != 0 {
				duration = s - step
				break
			}
		}
	}
	g[step][track] = duration
}

// Resize returns a grid with the given dimensions, preserving existing cell
// values by index and zero-filling any new cells.
func (g Grid) Resize(steps, tracks int) Grid {
	ret := NewGrid(steps, tracks)
	for s := 0; s < steps && s < len(g); s++ {
		for t := 0; t < tracks && t < len(g[s]); t++ {
			ret[s][t] = g[s][t]
		}
	}
	return ret
}

// DeleteTrack returns a grid with the given track column removed, re-indexing
// all later columns down by one.
func (g Grid) DeleteTrack(track int) Grid {
	if track < 0 || track >= g.NumTracks() {
		return g.Copy()
	}
	ret := NewGrid(len(g), g.NumTracks()-1)
	for s := range g {
		copy(ret[s][:track], g[s][:track])
		copy(ret[s][track:], g[s][track+1:])
	}
	return ret
}

// MoveTrack returns a grid with the column at from moved to position to,
// shifting the columns in between.
func (g Grid) MoveTrack(from, to int) Grid {
	n := g.NumTracks()
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return g.Copy()
	}
	ret := NewGrid(len(g), n)
	for s := range g {
		row := append([]int{}, g[s]...)
		v := row[from]
		row = append(row[:from], row[from+1:]...)
		row = append(row[:to], append([]int{v}, row[to:]...)...)
		copy(ret[s], row)
	}
	return ret
}

// Copy makes a deep copy of the Grid.
func (g Grid) Copy() Grid {
	ret := make(Grid, len(g))
	for i, row := range g {
		ret[i] = append([]int{}, row...)
	}
	return ret
}

// ToSequence converts the grid to its sparse persisted form, ordered by track
// and then by step.
func (g Grid) ToSequence() []SequenceEvent {
	var events []SequenceEvent
	for t := 0; t < g.NumTracks(); t++ {
		for s := range g {
			if d := g[s][t]; d != 0 {
				events = append(events, SequenceEvent{Track: t, Step: s, Duration: d})
			}
		}
	}
	return events
}

// FromSequence reconstructs a dense grid of the given dimensions from the
// sparse form. Events outside the bounds are dropped; in-bounds events pass
// through SetNote so the no-overlap invariant holds even for hand-edited
// project files.
func FromSequence(events []SequenceEvent, steps, tracks int) Grid {
	g := NewGrid(steps, tracks)
	for _, e := range events {
		if e.Step < 0 || e.Step >= steps || e.Track < 0 || e.Track >= tracks {
			continue
		}
		g.SetNote(e.Step, e.Track, e.Duration)
	}
	return g
}
