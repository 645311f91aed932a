package gridbeat

type (
	// TrackKind tells which of the three playback models a track uses: a
	// procedurally synthesized instrument, a pitched/varispeed sample, or a
	// free-form audio lane holding clips.
	TrackKind string

	// Waveform is the oscillator shape of a synth track that uses the
	// default instrument.
	Waveform string

	// Preset names one of the built-in instrument recipes. The empty preset
	// means the configurable default oscillator.
	Preset string

	// ADSR is the amplitude envelope of a synth voice. Attack, Decay and
	// Release are in seconds, Sustain is a level in [0,1]. Values are not
	// validated in place; Clamped is applied whenever a voice is built.
	ADSR struct {
		Attack  float64 `yaml:"attack" json:"attack"`
		Decay   float64 `yaml:"decay" json:"decay"`
		Sustain float64 `yaml:"sustain" json:"sustain"`
		Release float64 `yaml:"release" json:"release"`
	}

	// Track is one lane of the sequencer. It is a tagged union over the
	// three kinds: the common fields are always meaningful and the rest only
	// for the kind indicated by Kind. The index of a track in the project's
	// track list is also its column index in the Grid.
	Track struct {
		ID     int       `yaml:"id" json:"id"`
		Name   string    `yaml:"name" json:"name"`
		Color  string    `yaml:"color,omitempty" json:"color,omitempty"`
		Kind   TrackKind `yaml:"kind" json:"kind"`
		Volume float64   `yaml:"volume" json:"volume"`
		Muted  bool      `yaml:"muted,omitempty" json:"muted,omitempty"`

		// synth tracks
		Waveform   Waveform `yaml:"waveform,omitempty" json:"waveform,omitempty"`
		Preset     Preset   `yaml:"preset,omitempty" json:"preset,omitempty"`
		BaseNote   Note     `yaml:"baseNote,omitempty" json:"baseNote,omitempty"`
		Envelope   ADSR     `yaml:"envelope,omitempty" json:"envelope,omitempty"`
		DelaySend  bool     `yaml:"delay,omitempty" json:"delay,omitempty"`
		ReverbSend bool     `yaml:"reverb,omitempty" json:"reverb,omitempty"`

		// sample and audio-lane tracks
		AssetID   string  `yaml:"assetId,omitempty" json:"assetId,omitempty"`
		TrimStart float64 `yaml:"trimStart,omitempty" json:"trimStart,omitempty"`
		TrimEnd   float64 `yaml:"trimEnd,omitempty" json:"trimEnd,omitempty"`

		// audio-lane tracks; Semitones couples playback speed and pitch
		// (varispeed), see the package documentation.
		Semitones float64 `yaml:"semitones,omitempty" json:"semitones,omitempty"`
		Clips     []Clip  `yaml:"-" json:"-"`

		// Melody maps a step index to the ordered set of notes that override
		// BaseNote on that step only.
		Melody map[int][]Note `yaml:"melody,omitempty" json:"melody,omitempty"`
	}
)

const (
	KindSynth     TrackKind = "synth"
	KindSample    TrackKind = "sample"
	KindAudioLane TrackKind = "audio"
)

const (
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
	Sine     Waveform = "sine"
)

const (
	PresetDefault Preset = ""
	PresetPiano   Preset = "piano"
	PresetGuitar  Preset = "guitar"
	PresetBass    Preset = "bass"
	PresetKick    Preset = "kick"
	PresetSnare   Preset = "snare"
	PresetHiHat   Preset = "hihat"
)

// Clamped floors the attack, decay and release times at 1 ms and clamps the
// sustain level to [0,1].
func (a ADSR) Clamped() ADSR {
	const minTime = 0.001
	if a.Attack < minTime {
		a.Attack = minTime
	}
	if a.Decay < minTime {
		a.Decay = minTime
	}
	if a.Release < minTime {
		a.Release = minTime
	}
	if a.Sustain < 0 {
		a.Sustain = 0
	}
	if a.Sustain > 1 {
		a.Sustain = 1
	}
	return a
}

// DefaultADSR is the envelope of a freshly created synth track.
var DefaultADSR = ADSR{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3}

// NotesAt returns the notes the track plays on the given step: the melody map
// entry if one exists, otherwise the track's base note.
func (t *Track) NotesAt(step int) []Note {
	if notes, ok := t.Melody[step]; ok && len(notes) > 0 {
		return notes
	}
	if t.BaseNote == "" {
		return nil
	}
	return []Note{t.BaseNote}
}

// Gain returns the track volume clamped to [0,1].
func (t *Track) Gain() float64 {
	if t.Volume < 0 {
		return 0
	}
	if t.Volume > 1 {
		return 1
	}
	return t.Volume
}

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	ret := *t
	ret.Clips = append([]Clip{}, t.Clips...)
	if t.Melody != nil {
		ret.Melody = make(map[int][]Note, len(t.Melody))
		for k, v := range t.Melody {
			ret.Melody[k] = append([]Note{}, v...)
		}
	}
	return ret
}
