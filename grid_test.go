package gridbeat_test

import (
	"reflect"
	"testing"

	"github.com/gridbeat/gridbeat"
)

// noOverlap reports whether any note in the track column reaches into a later
// non-zero cell.
func noOverlap(g gridbeat.Grid, track int) bool {
	for s := 0; s < g.Steps(); s++ {
		d := g.Get(s, track)
		for c := s + 1; c < s+d; c++ {
			if g.Get(c, track) != 0 {
				return false
			}
		}
	}
	return true
}

func TestSetNoteTruncatesFollowing(t *testing.T) {
	g := gridbeat.NewGrid(16, 1)
	g.SetNote(8, 0, 4)
	g.SetNote(4, 0, 8) // would cover step 8
	if got := g.Get(4, 0); got != 4 {
		t.Errorf("expected note at 4 truncated to 4 steps, got %v", got)
	}
	if got := g.Get(8, 0); got != 4 {
		t.Errorf("expected note at 8 untouched, got %v", got)
	}
	if !noOverlap(g, 0) {
		t.Errorf("notes overlap after SetNote")
	}
}

func TestSetNoteTruncatesCovering(t *testing.T) {
	g := gridbeat.NewGrid(16, 1)
	g.SetNote(0, 0, 8)
	g.SetNote(4, 0, 2) // inside note starting at 0
	if got := g.Get(0, 0); got != 4 {
		t.Errorf("expected covering note shortened to 4 steps, got %v", got)
	}
	if got := g.Get(4, 0); got != 2 {
		t.Errorf("expected new note of 2 steps at 4, got %v", got)
	}
	if !noOverlap(g, 0) {
		t.Errorf("notes overlap after SetNote")
	}
}

func TestSetNoteClampsToGridEnd(t *testing.T) {
	g := gridbeat.NewGrid(8, 1)
	g.SetNote(6, 0, 10)
	if got := g.Get(6, 0); got != 2 {
		t.Errorf("expected duration clamped to 2, got %v", got)
	}
}

func TestSetNoteClear(t *testing.T) {
	g := gridbeat.NewGrid(8, 2)
	g.SetNote(3, 1, 2)
	g.SetNote(3, 1, 0)
	if got := g.Get(3, 1); got != 0 {
		t.Errorf("expected cleared cell, got %v", got)
	}
	g.SetNote(9, 0, 1) // out of bounds, no-op
	g.SetNote(0, 5, 1)
}

func TestGridSequenceRoundTrip(t *testing.T) {
	g := gridbeat.NewGrid(16, 3)
	g.SetNote(0, 0, 4)
	g.SetNote(8, 0, 2)
	g.SetNote(3, 2, 1)
	g.SetNote(15, 1, 1)
	got := gridbeat.FromSequence(g.ToSequence(), 16, 3)
	if !reflect.DeepEqual(got, g) {
		t.Errorf("round trip mismatch: got %v, expected %v", got, g)
	}
}

func TestFromSequenceDropsOutOfBounds(t *testing.T) {
	events := []gridbeat.SequenceEvent{
		{Track: 0, Step: 2, Duration: 2},
		{Track: 1, Step: 4, Duration: 1},  // track out of range
		{Track: 0, Step: 10, Duration: 1}, // step out of range
		{Track: -1, Step: 0, Duration: 1},
	}
	g := gridbeat.FromSequence(events, 8, 1)
	want := gridbeat.NewGrid(8, 1)
	want.SetNote(2, 0, 2)
	if !reflect.DeepEqual(g, want) {
		t.Errorf("FromSequence = %v, expected %v", g, want)
	}
}

func TestGridResize(t *testing.T) {
	g := gridbeat.NewGrid(8, 2)
	g.SetNote(2, 1, 3)
	g.SetNote(6, 0, 1)
	shrunk := g.Resize(4, 2)
	if shrunk.Steps() != 4 || shrunk.Get(2, 1) != 3 || shrunk.Get(6, 0) != 0 {
		t.Errorf("shrink did not preserve cells by index: %v", shrunk)
	}
	grown := g.Resize(16, 3)
	if grown.Steps() != 16 || grown.NumTracks() != 3 || grown.Get(2, 1) != 3 || grown.Get(6, 0) != 1 {
		t.Errorf("grow did not preserve cells: %v", grown)
	}
	if grown.Get(10, 2) != 0 {
		t.Errorf("expected new cells zero-filled")
	}
}

func TestGridDeleteAndMoveTrack(t *testing.T) {
	g := gridbeat.NewGrid(4, 3)
	g.SetNote(0, 0, 1)
	g.SetNote(1, 1, 2)
	g.SetNote(2, 2, 1)

	deleted := g.DeleteTrack(1)
	if deleted.NumTracks() != 2 || deleted.Get(0, 0) != 1 || deleted.Get(2, 1) != 1 {
		t.Errorf("DeleteTrack(1) = %v", deleted)
	}

	moved := g.MoveTrack(0, 2)
	if moved.Get(0, 2) != 1 || moved.Get(1, 0) != 2 || moved.Get(2, 1) != 1 {
		t.Errorf("MoveTrack(0,2) = %v", moved)
	}
}
