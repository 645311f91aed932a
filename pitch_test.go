package gridbeat_test

import (
	"math"
	"testing"

	"github.com/gridbeat/gridbeat"
)

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		note gridbeat.Note
		want float64
	}{
		{"A4", 440},
		{"C4", 261.6255653},
		{"C#4", 277.1826310},
		{"Db4", 277.1826310},
		{"A3", 220},
		{"A5", 880},
		{"E2", 82.4068892},
		{"B7", 3951.0664100},
		{"C0", 16.3515978},
		{"A-1", 13.75},
	}
	for _, test := range tests {
		got, err := test.note.Frequency()
		if err != nil {
			t.Fatalf("Frequency(%v) returned error: %v", test.note, err)
		}
		if math.Abs(got-test.want) > 1e-4 {
			t.Errorf("Frequency(%v) = %v, expected %v", test.note, got, test.want)
		}
	}
}

func TestNoteFrequencyInvalid(t *testing.T) {
	for _, note := range []gridbeat.Note{"", "H4", "C", "C#", "Cx4", "4C", "C##4"} {
		if _, err := note.Frequency(); err == nil {
			t.Errorf("Frequency(%q) expected an error", note)
		}
	}
}

func TestStepSeconds(t *testing.T) {
	if got := gridbeat.StepSeconds(120); math.Abs(got-0.125) > 1e-12 {
		t.Errorf("StepSeconds(120) = %v, expected 0.125", got)
	}
	if got := gridbeat.StepSeconds(60); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("StepSeconds(60) = %v, expected 0.25", got)
	}
	if got := gridbeat.StepSeconds(0); got != 0 {
		t.Errorf("StepSeconds(0) = %v, expected 0", got)
	}
}
