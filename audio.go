package gridbeat

// SampleRate is the fixed sample rate of the whole engine. Both the output
// device and the offline renderer run at this rate; sample assets recorded at
// other rates are resampled on the fly by the playback rate machinery.
const SampleRate = 44100

// AudioBuffer is a buffer of stereo audio samples of variable length, each
// sample represented by [2]float32. The audio device consumes audio by
// pulling from an io.Reader instead (see the oto package); AudioBuffer is the
// in-memory form used by rendering and export.
type AudioBuffer [][2]float32

// StepSeconds returns the length of one sequencer step in seconds at the
// given tempo. Steps are fixed at sixteenth-note resolution, so one step is a
// quarter of a beat.
func StepSeconds(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return 0.25 * 60 / bpm
}
