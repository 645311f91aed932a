package gridbeat

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Project is both the in-memory model of a composition and its persisted
// form. The durable cross-session contract is the tempo, step count, track
// specs, the sparse note sequence, and the clip placements; the dense Grid
// and the per-track clip lists are runtime state rebuilt by Unpack and
// flattened back by Pack.
type Project struct {
	BPM      float64         `yaml:"tempo" json:"tempo"`
	Steps    int             `yaml:"steps" json:"steps"`
	Tracks   []Track         `yaml:"tracks" json:"tracks"`
	Sequence []SequenceEvent `yaml:"sequence" json:"sequence"`
	Clips    []ClipPlacement `yaml:"clips,omitempty" json:"clips,omitempty"`

	Grid Grid `yaml:"-" json:"-"`
}

// NewProject returns an empty project with sensible defaults.
func NewProject() Project {
	return Project{BPM: 120, Steps: 16, Grid: NewGrid(16, 0)}
}

// StepSeconds returns the length of one step at the project tempo.
func (p *Project) StepSeconds() float64 { return StepSeconds(p.BPM) }

// Validate checks that the project looks playable: positive tempo and step
// count, distinct track IDs, and sample trims in order.
func (p *Project) Validate() error {
	if p.BPM <= 0 {
		return errors.New("tempo should be > 0")
	}
	if p.Steps < 1 {
		return errors.New("project contains no steps")
	}
	seen := make(map[int]bool, len(p.Tracks))
	for _, t := range p.Tracks {
		if seen[t.ID] {
			return fmt.Errorf("duplicate track id %d", t.ID)
		}
		seen[t.ID] = true
		if t.Kind == KindSample && t.TrimStart >= t.TrimEnd {
			return fmt.Errorf("track %d: trimStart should be < trimEnd", t.ID)
		}
	}
	return nil
}

// Unpack rebuilds the runtime state from the persisted fields: the dense grid
// from the sparse sequence (out-of-range entries dropped) and the per-track
// clip lists from the flat placement list. Placements referencing unknown
// tracks are dropped.
func (p *Project) Unpack() {
	p.Grid = FromSequence(p.Sequence, p.Steps, len(p.Tracks))
	for i := range p.Tracks {
		p.Tracks[i].Clips = nil
	}
	for _, cp := range p.Clips {
		if i := p.TrackIndex(cp.TrackID); i >= 0 {
			p.Tracks[i].Clips = append(p.Tracks[i].Clips, cp.Clip)
		}
	}
}

// Pack flattens the runtime state back into the persisted fields.
func (p *Project) Pack() {
	p.Sequence = p.Grid.ToSequence()
	p.Clips = nil
	for _, t := range p.Tracks {
		for _, c := range t.Clips {
			p.Clips = append(p.Clips, ClipPlacement{TrackID: t.ID, Clip: c})
		}
	}
}

// TrackIndex returns the index of the track with the given ID, or -1.
func (p *Project) TrackIndex(id int) int {
	for i := range p.Tracks {
		if p.Tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// NextTrackID returns an ID not used by any current track.
func (p *Project) NextTrackID() int {
	id := 0
	for _, t := range p.Tracks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

// AddTrack appends a track and grows the grid by one column.
func (p *Project) AddTrack(t Track) {
	p.Tracks = append(p.Tracks, t)
	p.Grid = p.Grid.Resize(p.Steps, len(p.Tracks))
}

// DeleteTrack removes the track with the given ID together with its grid
// column and clips, re-indexing all later columns down by one.
func (p *Project) DeleteTrack(id int) {
	i := p.TrackIndex(id)
	if i < 0 {
		return
	}
	p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
	p.Grid = p.Grid.DeleteTrack(i)
}

// MoveTrack reorders the track at index from to index to, moving its grid
// column along with it.
func (p *Project) MoveTrack(from, to int) {
	if from < 0 || from >= len(p.Tracks) || to < 0 || to >= len(p.Tracks) || from == to {
		return
	}
	t := p.Tracks[from]
	p.Tracks = append(p.Tracks[:from], p.Tracks[from+1:]...)
	p.Tracks = append(p.Tracks[:to], append([]Track{t}, p.Tracks[to:]...)...)
	p.Grid = p.Grid.MoveTrack(from, to)
}

// SetSteps changes the step count, resizing the grid and preserving existing
// cells by index.
func (p *Project) SetSteps(steps int) {
	if steps < 1 {
		return
	}
	p.Steps = steps
	p.Grid = p.Grid.Resize(steps, len(p.Tracks))
}

// Copy makes a deep copy of the Project.
func (p *Project) Copy() Project {
	ret := *p
	ret.Tracks = make([]Track, len(p.Tracks))
	for i := range p.Tracks {
		ret.Tracks[i] = p.Tracks[i].Copy()
	}
	ret.Sequence = append([]SequenceEvent{}, p.Sequence...)
	ret.Clips = append([]ClipPlacement{}, p.Clips...)
	ret.Grid = p.Grid.Copy()
	return ret
}

// ParseProject reads a project from its serialized form, trying JSON first
// and YAML second, and unpacks the runtime state.
func ParseProject(data []byte) (Project, error) {
	var p Project
	if errJSON := json.Unmarshal(data, &p); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &p); errYaml != nil {
			return Project{}, fmt.Errorf("unmarshaling project: %v / %v", errYaml, errJSON)
		}
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	p.Unpack()
	return p, nil
}
