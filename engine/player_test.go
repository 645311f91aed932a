package engine

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/gridbeat/gridbeat"
	"github.com/gridbeat/gridbeat/sample"
)

func testProject() gridbeat.Project {
	p := gridbeat.NewProject()
	p.AddTrack(gridbeat.Track{
		ID:       0,
		Name:     "lead",
		Kind:     gridbeat.KindSynth,
		Volume:   1,
		BaseNote: "A4",
		Envelope: gridbeat.DefaultADSR,
	})
	p.Grid.SetNote(0, 0, 1)
	p.Grid.SetNote(4, 0, 2)
	return p
}

// Scheduling through the lookahead window must dispatch every quarter-step
// exactly once, at monotonically non-decreasing frame positions on the device
// clock.
func TestScheduleMonotonicDispatch(t *testing.T) {
	p := NewPlayer(NewBroker(), sample.NewCache())
	p.project = testProject()
	p.setPlaying(true)

	subFrames := p.project.StepSeconds() / 4 * gridbeat.SampleRate
	scratch := make(gridbeat.AudioBuffer, 512)
	var starts []int64
	seen := make(map[int64]bool)
	for p.frame < 5*gridbeat.SampleRate {
		p.mu.Lock()
		p.schedule()
		for _, v := range p.voices {
			if !seen[v.start] {
				seen[v.start] = true
				starts = append(starts, v.start)
			}
		}
		p.mu.Unlock()
		p.Render(scratch)
	}
	if len(starts) < 2 {
		t.Fatalf("expected repeated dispatches over 5 seconds, got %v", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if starts[i] < starts[i-1] {
			t.Fatalf("dispatch order not monotonic: %v after %v", starts[i], starts[i-1])
		}
	}
	// the two grid notes are 4 steps = 16 quarter-steps apart
	if gap := float64(starts[1] - starts[0]); math.Abs(gap-16*subFrames) > 32 {
		t.Errorf("gap between hits = %v frames, expected %v", gap, 16*subFrames)
	}
	// the second pass of the loop must land on the exact grid position:
	// rounding per quarter-step instead of per dispatch would be 8 frames
	// early by now and keep drifting every loop
	if len(starts) >= 3 {
		loopStart := float64(p.project.Steps) * 4 * subFrames
		if diff := math.Abs(float64(starts[2]) - loopStart); diff > 1 {
			t.Errorf("second loop pass starts at %v, expected %v", starts[2], loopStart)
		}
	}
}

func TestScheduleLoopsAndPublishesSteps(t *testing.T) {
	broker := NewBroker()
	p := NewPlayer(broker, sample.NewCache())
	p.project = testProject()
	p.setPlaying(true)

	loopSeconds := float64(p.project.Steps) * p.project.StepSeconds()
	scratch := make(gridbeat.AudioBuffer, 512)
	for p.frame < int64((loopSeconds+0.5)*gridbeat.SampleRate) {
		p.mu.Lock()
		p.schedule()
		p.mu.Unlock()
		p.Render(scratch)
	}

	var steps []int
	for {
		msg, ok := TimeoutReceive(broker.ToUI, 10*time.Millisecond)
		if !ok {
			break
		}
		if msg.HasStep {
			steps = append(steps, msg.Step)
		}
	}
	if len(steps) <= p.project.Steps {
		t.Fatalf("expected the playhead to wrap around, got %v steps", len(steps))
	}
	for i, s := range steps {
		if s != i%p.project.Steps {
			t.Fatalf("step %v published as %v, expected %v", i, s, i%p.project.Steps)
		}
	}
}

func TestRenderProducesAudioAndAdvancesClock(t *testing.T) {
	p := NewPlayer(NewBroker(), sample.NewCache())
	p.project = testProject()
	p.setPlaying(true)
	p.mu.Lock()
	p.schedule()
	p.mu.Unlock()

	buf := make(gridbeat.AudioBuffer, 2048)
	p.Render(buf)
	if p.frame != 2048 {
		t.Errorf("frame = %v, expected 2048", p.frame)
	}
	var energy float64
	for _, s := range buf {
		energy += float64(s[0]) * float64(s[0])
	}
	if energy < 1e-6 {
		t.Errorf("expected audible output on the first quantum")
	}
}

func TestMutedTrackDoesNotTrigger(t *testing.T) {
	p := NewPlayer(NewBroker(), sample.NewCache())
	proj := testProject()
	proj.Tracks[0].Muted = true
	p.project = proj
	p.setPlaying(true)
	p.mu.Lock()
	p.schedule()
	n := len(p.voices)
	p.mu.Unlock()
	if n != 0 {
		t.Errorf("muted track dispatched %v voices", n)
	}
}

// Stopping the transport halts scheduling but never cancels voices that were
// already dispatched: a note sounding at the moment of stop rings out to the
// end of its envelope.
func TestStopLetsDispatchedVoicesRingOut(t *testing.T) {
	p := NewPlayer(NewBroker(), sample.NewCache())
	p.project = testProject()
	p.setPlaying(true)
	p.mu.Lock()
	p.schedule()
	p.mu.Unlock()
	p.Render(make(gridbeat.AudioBuffer, 256))

	p.setPlaying(false)
	if len(p.voices) == 0 {
		t.Fatalf("stop cancelled voices that were already dispatched")
	}
	tail := make(gridbeat.AudioBuffer, 2048)
	p.Render(tail)
	var energy float64
	for _, s := range tail {
		energy += float64(s[0]) * float64(s[0])
	}
	if energy < 1e-6 {
		t.Errorf("dispatched voice went silent immediately after stop")
	}
	// the clock keeps running while stopped, but nothing new is scheduled
	if p.frame != 256+2048 {
		t.Errorf("frame = %v, expected %v", p.frame, 256+2048)
	}
	p.mu.Lock()
	p.schedule()
	n := len(p.voices)
	p.mu.Unlock()
	if n > 1 {
		t.Errorf("scheduling continued after stop: %v voices", n)
	}
}

// Every rendered quantum reaches the UI as a pooled audio buffer, so a
// waveform view can draw the exact signal the device played.
func TestRenderPublishesWaveform(t *testing.T) {
	broker := NewBroker()
	p := NewPlayer(broker, sample.NewCache())
	p.project = testProject()
	p.setPlaying(true)
	p.mu.Lock()
	p.schedule()
	p.mu.Unlock()

	buf := make(gridbeat.AudioBuffer, 512)
	p.Render(buf)
	for {
		msg, ok := TimeoutReceive(broker.ToUI, 10*time.Millisecond)
		if !ok {
			t.Fatalf("no waveform published for the rendered quantum")
		}
		wave, isWave := msg.Data.(*gridbeat.AudioBuffer)
		if !isWave {
			continue
		}
		if !reflect.DeepEqual(*wave, buf) {
			t.Errorf("published waveform differs from the rendered output")
		}
		broker.PutAudioBuffer(wave)
		if len(*wave) != 0 {
			t.Errorf("returned buffer not reset, len %v", len(*wave))
		}
		return
	}
}

func TestHandleMessageRejectsBadTempo(t *testing.T) {
	broker := NewBroker()
	p := NewPlayer(broker, sample.NewCache())
	p.project = testProject()
	p.mu.Lock()
	p.handleMessage(BPMMsg{BPM: -10})
	p.mu.Unlock()
	if p.project.BPM != 120 {
		t.Errorf("negative tempo applied: %v", p.project.BPM)
	}
	msg, ok := TimeoutReceive(broker.ToUI, 10*time.Millisecond)
	if !ok {
		t.Fatalf("expected an alert for the rejected tempo")
	}
	if _, isAlert := msg.Data.(Alert); !isAlert {
		t.Errorf("expected an Alert, got %T", msg.Data)
	}
}

func TestRenderSong(t *testing.T) {
	proj := testProject()
	proj.Pack()
	buf, err := RenderSong(proj, sample.NewCache())
	if err != nil {
		t.Fatalf("RenderSong returned error: %v", err)
	}
	loopFrames := int(float64(proj.Steps) * gridbeat.StepSeconds(proj.BPM) * gridbeat.SampleRate)
	if len(buf) < loopFrames {
		t.Fatalf("rendered %v frames, expected at least one loop of %v", len(buf), loopFrames)
	}
	var energy float64
	for _, s := range buf[:loopFrames] {
		energy += float64(s[0]) * float64(s[0])
	}
	if energy < 1e-6 {
		t.Errorf("rendered song is silent")
	}
	if _, err := RenderSong(gridbeat.Project{BPM: 0, Steps: 8}, sample.NewCache()); err == nil {
		t.Errorf("expected an error for an invalid project")
	}
}

func TestRenderSongMissingAsset(t *testing.T) {
	proj := gridbeat.NewProject()
	proj.AddTrack(gridbeat.Track{
		ID: 0, Kind: gridbeat.KindSample, Volume: 1,
		AssetID: "nope", TrimStart: 0, TrimEnd: 1,
	})
	proj.Pack()
	if _, err := RenderSong(proj, sample.NewCache()); err == nil {
		t.Errorf("expected an error for a missing asset")
	}
}

// Audio-lane clips start on quarter-step boundaries, not only on whole steps.
func TestScheduleTriggersClipsOnQuarterSteps(t *testing.T) {
	cache := sample.NewCache()
	buf := make(gridbeat.AudioBuffer, 44100)
	for i := range buf {
		buf[i] = [2]float32{0.5, 0.5}
	}
	cache.Store("vox", &sample.Asset{Buffer: buf, Rate: 44100})

	proj := gridbeat.NewProject()
	proj.AddTrack(gridbeat.Track{ID: 0, Kind: gridbeat.KindAudioLane, Volume: 1, AssetID: "vox"})
	proj.Tracks[0].Clips = []gridbeat.Clip{{ID: "a", StartStep: 1.75, DurationSteps: 2}}

	p := NewPlayer(NewBroker(), cache)
	p.project = proj
	p.setPlaying(true)

	var start int64 = -1
	scratch := make(gridbeat.AudioBuffer, 512)
	for p.frame < gridbeat.SampleRate && start < 0 {
		p.mu.Lock()
		p.schedule()
		if len(p.voices) > 0 {
			start = p.voices[0].start
		}
		p.mu.Unlock()
		p.Render(scratch)
	}
	if start < 0 {
		t.Fatalf("clip never dispatched within one second")
	}
	subFrames := proj.StepSeconds() / 4 * gridbeat.SampleRate
	want := int64(math.Round(7 * subFrames)) // startStep 1.75 is the 7th quarter-step
	if start != want {
		t.Errorf("clip start = %v, expected %v", start, want)
	}
}
