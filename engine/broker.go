// Package engine runs the playback side of the sequencer: the lookahead
// transport scheduler, the mixer, and the sample-accurate voice renderer
// feeding the audio device. The engine owns its copy of the project model;
// the UI talks to it only through the Broker, and edits are applied between
// scheduler ticks so a voice never sees a half-updated track.
package engine

import (
	"sync"
	"time"

	"github.com/gridbeat/gridbeat"
)

type (
	// Broker is the message hub between the UI and the engine. It is
	// many-to-one per recipient: one channel towards the engine, one towards
	// the UI, plus a sync.Pool of audio buffers so the renderer can hand
	// waveforms to the UI without allocating.
	//
	// CloseEngine has a capacity of 1, so requesting closure never blocks;
	// if the channel is already full, someone else has already requested it.
	// FinishedEngine is closed (never sent to) when the transport goroutine
	// has cleaned up, so shutdown can wait on it, preferably combined with a
	// timeout.
	Broker struct {
		ToEngine chan any
		ToUI     chan MsgToUI

		CloseEngine    chan struct{}
		FinishedEngine chan struct{}

		bufferPool sync.Pool
	}

	// MsgToUI carries the engine's outputs for rendering: the playhead step,
	// whether the transport runs, and boxed infrequent data (Alert, asset
	// readiness, audio buffers).
	MsgToUI struct {
		HasStep bool
		Step    int
		Playing bool

		Data any
	}

	// AlertPriority tells the UI how prominently to show an alert.
	AlertPriority int

	// Alert is a non-fatal condition reported to the UI, e.g. an asset that
	// failed to decode. Alerts with the same name replace each other.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
	}

	// AssetReady tells the UI that a decoded asset became available.
	AssetReady struct {
		ID string
	}
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

// Messages the UI sends to the engine. Whole-model messages replace the
// engine's copy; scalar messages adjust a single parameter without
// resending the model.
type (
	// ProjectMsg replaces the engine's whole project model.
	ProjectMsg struct{ Project gridbeat.Project }

	// TracksMsg replaces the track list (parameter edits, reorders).
	TracksMsg struct{ Tracks []gridbeat.Track }

	// GridMsg replaces the note grid.
	GridMsg struct{ Grid gridbeat.Grid }

	// IsPlayingMsg starts or stops the transport.
	IsPlayingMsg struct{ Playing bool }

	// BPMMsg changes the tempo; only events scheduled after the change are
	// affected.
	BPMMsg struct{ BPM float64 }

	// StepCountMsg changes the number of steps in the loop.
	StepCountMsg struct{ Steps int }

	// SoloMsg selects the soloed track by ID, or clears the solo with a
	// negative ID.
	SoloMsg struct{ TrackID int }

	// AssetMsg imports raw audio bytes under an asset id. Decoding happens
	// off the scheduler thread; the asset is silent until ready.
	AssetMsg struct {
		ID   string
		Data []byte
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan any, 1024),
		ToUI:           make(chan MsgToUI, 1024),
		CloseEngine:    make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
		bufferPool:     sync.Pool{New: func() any { return &gridbeat.AudioBuffer{} }},
	}
}

// GetAudioBuffer returns an empty audio buffer from the pool; return it with
// PutAudioBuffer after use.
func (b *Broker) GetAudioBuffer() *gridbeat.AudioBuffer {
	return b.bufferPool.Get().(*gridbeat.AudioBuffer)
}

// PutAudioBuffer returns a buffer to the pool, resetting its length but
// keeping its capacity.
func (b *Broker) PutAudioBuffer(buf *gridbeat.AudioBuffer) {
	if len(*buf) > 0 {
		*buf = (*buf)[:0]
	}
	b.bufferPool.Put(buf)
}

// TrySend sends a value to a channel unless it is full. It is guaranteed to
// be non-blocking; the engine must never dead-lock on a slow UI.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value arrives or the timeout passes; ok is
// false on timeout or when the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
