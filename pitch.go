package gridbeat

import (
	"fmt"
	"math"
	"strconv"
)

// Note is a note name: a letter A-G, an optional accidental (# or b) and an
// octave number, e.g. "C4", "F#3" or "Eb5". The zero value is not a valid
// note; parse errors surface only at Frequency, so Notes can be passed around
// and persisted freely.
type Note string

// chromatic index of each note letter within an octave, C = 0 ... B = 11.
var noteIndex = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Frequency returns the frequency of the note in Hz, in equal temperament
// tuned to A4 = 440 Hz.
func (n Note) Frequency() (float64, error) {
	semitones, err := n.semitones()
	if err != nil {
		return 0, err
	}
	return 440 * math.Exp2(float64(semitones)/12), nil
}

// semitones returns the distance of the note from A4, in semitones.
func (n Note) semitones() (int, error) {
	if len(n) < 2 {
		return 0, fmt.Errorf("invalid note %q", string(n))
	}
	index, ok := noteIndex[n[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note letter in %q", string(n))
	}
	rest := string(n[1:])
	switch rest[0] {
	case '#':
		index++
		rest = rest[1:]
	case 'b':
		index--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note %q", string(n))
	}
	return index - 9 + (octave-4)*12, nil
}
