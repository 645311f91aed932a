package engine

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/viterin/vek/vek32"

	"github.com/gridbeat/gridbeat"
	"github.com/gridbeat/gridbeat/sample"
	"github.com/gridbeat/gridbeat/synth"
)

const (
	// tickInterval is how often the transport wakes up to schedule; lookahead
	// is how far ahead of the device clock it schedules. The lookahead must
	// comfortably exceed the tick interval so scheduling jitter never lands a
	// voice in the past.
	tickInterval = 25 * time.Millisecond
	lookahead    = 0.1

	delaySeconds  = 0.3
	delayFeedback = 0.4
	delayWet      = 0.5

	reverbSeconds = 2.0
	reverbDecay   = 2.0
	reverbWet     = 0.5
)

type (
	// Player is the audio thread of the sequencer. Its device clock is
	// frame, the number of frames rendered since creation; voices are
	// scheduled at exact frame positions on that clock, so playback timing
	// does not depend on when the transport goroutine happens to run.
	Player struct {
		broker *Broker
		cache  *sample.Cache

		mu sync.Mutex // guards everything below

		project gridbeat.Project
		mixer   *Mixer
		playing bool

		frame    int64   // device clock
		subTick  int64   // quarter-steps scheduled since play started
		nextTime float64 // fractional frame position of subTick

		voices []voice
		buses  map[int]*bus

		scratch gridbeat.AudioBuffer
	}

	// voice binds a renderer to its track and its lifetime on the device
	// clock. Voices are dropped once the clock passes end.
	voice struct {
		track      int // track ID
		start, end int64
		renderer   synth.Renderer
	}

	// bus is the per-track mix destination with its send effects. The effect
	// lines persist across render quanta so tails keep ringing after the dry
	// signal stops.
	bus struct {
		l, r         []float32
		delay        *synth.Delay
		convL, convR *synth.Convolver
	}
)

var (
	reverbOnce    sync.Once
	reverbImpulse [2][]float32
)

// reverbChannels synthesizes the shared stereo impulse response on first use.
func reverbChannels() [2][]float32 {
	reverbOnce.Do(func() {
		imp := synth.Impulse(reverbSeconds, reverbDecay)
		reverbImpulse[0] = make([]float32, len(imp))
		reverbImpulse[1] = make([]float32, len(imp))
		for i, s := range imp {
			reverbImpulse[0][i] = s[0]
			reverbImpulse[1][i] = s[1]
		}
	})
	return reverbImpulse
}

func NewPlayer(broker *Broker, cache *sample.Cache) *Player {
	return &Player{
		broker: broker,
		cache:  cache,
		mixer:  NewMixer(),
		buses:  make(map[int]*bus),
	}
}

// Run is the transport loop; call it on its own goroutine. It schedules
// upcoming voices every tick and applies UI messages between ticks, and
// returns when CloseEngine is signalled.
func (p *Player) Run() {
	defer close(p.broker.FinishedEngine)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.broker.CloseEngine:
			return
		case msg := <-p.broker.ToEngine:
			p.mu.Lock()
			p.handleMessage(msg)
			p.mu.Unlock()
		case <-ticker.C:
			p.mu.Lock()
			p.schedule()
			p.mu.Unlock()
		}
	}
}

func (p *Player) handleMessage(msg any) {
	switch m := msg.(type) {
	case ProjectMsg:
		p.project = m.Project
		p.project.Unpack()
	case TracksMsg:
		p.project.Tracks = m.Tracks
	case GridMsg:
		p.project.Grid = m.Grid
	case IsPlayingMsg:
		p.setPlaying(m.Playing)
	case BPMMsg:
		if m.BPM <= 0 {
			p.alert("tempo", fmt.Errorf("tempo must be positive, got %g", m.BPM), Warning)
			return
		}
		p.project.BPM = m.BPM
	case StepCountMsg:
		p.project.SetSteps(m.Steps)
	case SoloMsg:
		if m.TrackID < 0 {
			p.mixer.Solo = -1
		} else {
			p.mixer.ToggleSolo(m.TrackID)
		}
	case AssetMsg:
		p.cache.LoadAsync(m.ID, m.Data, func(err error) {
			if err != nil {
				TrySend(p.broker.ToUI, MsgToUI{Data: Alert{
					Name:     "asset:" + m.ID,
					Message:  err.Error(),
					Priority: Error,
				}})
				return
			}
			TrySend(p.broker.ToUI, MsgToUI{Data: AssetReady{ID: m.ID}})
		})
	}
}

func (p *Player) setPlaying(playing bool) {
	if playing == p.playing {
		return
	}
	p.playing = playing
	if playing {
		p.subTick = 0
		p.nextTime = float64(p.frame)
		p.schedule()
	}
	// stop only halts scheduling; voices already dispatched keep rendering
	// to their end and ring out naturally
	TrySend(p.broker.ToUI, MsgToUI{Playing: playing})
}

// schedule advances the subtick grid through the lookahead window, triggering
// every quarter-step position whose frame falls inside it. Event times
// accumulate in float64 and round to a frame only at dispatch, so the grid
// never drifts against the clock no matter how long playback runs. A subtick
// whose frame has already passed (e.g. right after pressing play) is clamped
// to the current clock instead of being dropped.
func (p *Player) schedule() {
	if !p.playing {
		return
	}
	stepSeconds := p.project.StepSeconds()
	if stepSeconds <= 0 || p.project.Steps < 1 {
		return
	}
	horizon := float64(p.frame) + lookahead*gridbeat.SampleRate
	for p.nextTime < horizon {
		at := int64(math.Round(p.nextTime))
		if at < p.frame {
			at = p.frame
		}
		p.trigger(p.subTick, at, stepSeconds)
		p.subTick++
		p.nextTime += stepSeconds / 4 * gridbeat.SampleRate
		stepSeconds = p.project.StepSeconds()
	}
}

// trigger fires everything that starts on one quarter-step: grid notes on
// whole-step boundaries, clips on any quarter-step their snapped start
// matches. at is the exact frame position on the device clock.
func (p *Player) trigger(subTick, at int64, stepSeconds float64) {
	loop := int64(p.project.Steps) * 4
	wrapped := int(subTick % loop)
	onStep := wrapped%4 == 0
	step := wrapped / 4

	if onStep {
		TrySend(p.broker.ToUI, MsgToUI{HasStep: true, Step: step, Playing: true})
	}
	for ti := range p.project.Tracks {
		t := &p.project.Tracks[ti]
		if !p.mixer.Audible(t) {
			continue
		}
		switch t.Kind {
		case gridbeat.KindSynth, gridbeat.KindSample:
			if !onStep {
				continue
			}
			dur := p.project.Grid.Get(step, ti)
			if dur <= 0 {
				continue
			}
			p.triggerNotes(t, step, float64(dur)*stepSeconds, at)
		case gridbeat.KindAudioLane:
			asset, ok := p.cache.Get(t.AssetID)
			if !ok {
				continue
			}
			for _, c := range t.Clips {
				if int(math.Round(c.StartStep*4))%int(loop) != wrapped {
					continue
				}
				pb, frames := sample.NewClipVoice(t, asset, c, stepSeconds)
				p.addVoice(t.ID, at, frames, pb)
			}
		}
	}
}

func (p *Player) triggerNotes(t *gridbeat.Track, step int, noteDur float64, at int64) {
	notes := t.NotesAt(step)
	if len(notes) == 0 {
		// unpitched hit: drum presets ignore the note, sample tracks
		// fall back to the varispeed rate
		notes = []gridbeat.Note{""}
	}
	for _, note := range notes {
		switch t.Kind {
		case gridbeat.KindSynth:
			v, err := synth.NewVoice(t, note, noteDur)
			if err != nil {
				p.alert("track:"+t.Name, err, Warning)
				continue
			}
			p.addVoice(t.ID, at, v.Frames, v)
		case gridbeat.KindSample:
			asset, ok := p.cache.Get(t.AssetID)
			if !ok {
				continue
			}
			pb, frames, err := sample.NewNoteVoice(t, asset, note, noteDur)
			if err != nil {
				p.alert("track:"+t.Name, err, Warning)
				continue
			}
			p.addVoice(t.ID, at, frames, pb)
		}
	}
}

func (p *Player) addVoice(trackID int, at int64, frames int, r synth.Renderer) {
	if frames <= 0 {
		return
	}
	p.voices = append(p.voices, voice{track: trackID, start: at, end: at + int64(frames), renderer: r})
}

func (p *Player) alert(name string, err error, prio AlertPriority) {
	TrySend(p.broker.ToUI, MsgToUI{Playing: p.playing, Data: Alert{
		Name:     name,
		Message:  err.Error(),
		Priority: prio,
	}})
}

// Render mixes the next len(buf) frames into buf, advancing the device clock.
// Voices render dry into their track bus, the bus runs through its send
// effects and track gain, and the buses sum into the output. Rendering keeps
// going while stopped so effect tails ring out. Each rendered quantum is
// also published to the UI as a pooled *gridbeat.AudioBuffer for waveform
// display; the UI returns it with PutAudioBuffer.
func (p *Player) Render(buf gridbeat.AudioBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(buf)
	if n == 0 {
		return
	}
	for _, t := range p.project.Tracks {
		b := p.bus(t.ID, n)
		clear(b.l[:n])
		clear(b.r[:n])
	}

	kept := p.voices[:0]
	for _, v := range p.voices {
		b, ok := p.buses[v.track]
		if ok {
			s := max(v.start, p.frame)
			e := min(v.end, p.frame+int64(n))
			if s < e {
				lo, hi := int(s-p.frame), int(e-p.frame)
				v.renderer.Render(b.l[lo:hi], b.r[lo:hi], int(s-v.start))
			}
		}
		if v.end > p.frame+int64(n) {
			kept = append(kept, v)
		}
	}
	p.voices = kept

	for i := range buf {
		buf[i] = [2]float32{}
	}
	for ti := range p.project.Tracks {
		t := &p.project.Tracks[ti]
		b := p.buses[t.ID]
		if t.DelaySend && b.delay == nil {
			b.delay = synth.NewDelay(delaySeconds, delayFeedback, delayWet)
		}
		if b.delay != nil {
			b.delay.Mix(b.l[:n], b.r[:n])
		}
		if t.ReverbSend && b.convL == nil {
			imp := reverbChannels()
			b.convL = synth.NewConvolver(imp[0], reverbWet)
			b.convR = synth.NewConvolver(imp[1], reverbWet)
		}
		if b.convL != nil {
			b.convL.Mix(b.l[:n])
			b.convR.Mix(b.r[:n])
		}
		gain := float32(t.Gain())
		vek32.MulNumber_Inplace(b.l[:n], gain)
		vek32.MulNumber_Inplace(b.r[:n], gain)
		for i := range buf {
			buf[i][0] += b.l[i]
			buf[i][1] += b.r[i]
		}
	}
	p.frame += int64(n)

	wave := p.broker.GetAudioBuffer()
	*wave = append(*wave, buf...)
	if !TrySend(p.broker.ToUI, MsgToUI{Playing: p.playing, Data: wave}) {
		p.broker.PutAudioBuffer(wave)
	}
}

// bus returns the track's bus, growing its scratch space to at least n frames.
func (p *Player) bus(trackID, n int) *bus {
	b, ok := p.buses[trackID]
	if !ok {
		b = &bus{}
		p.buses[trackID] = b
	}
	if cap(b.l) < n {
		b.l = make([]float32, n)
		b.r = make([]float32, n)
	}
	b.l = b.l[:n]
	b.r = b.r[:n]
	return b
}

// Read implements io.Reader for the audio device: interleaved stereo
// float32 little-endian frames. The device pulling Read is what drives the
// clock forwards.
func (p *Player) Read(out []byte) (int, error) {
	frames := len(out) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(p.scratch) < frames {
		p.scratch = make(gridbeat.AudioBuffer, frames)
	}
	buf := p.scratch[:frames]
	p.Render(buf)
	for i, s := range buf {
		binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(s[0]))
		binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(s[1]))
	}
	return frames * 8, nil
}
