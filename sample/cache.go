// Package sample decodes audio assets into memory and plays them back at
// computed rates: pitched playback for melodic sample tracks, varispeed fit
// for plain grid hits, and offset/duration windows for audio-lane clips.
//
// Decoding happens once, when an asset is recorded or imported; the trigger
// path only ever does a non-blocking cache lookup and treats a missing or
// still-decoding asset as silence.
package sample

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/gridbeat/gridbeat"
)

type (
	// Asset is one decoded audio buffer. Rate is the source sample rate,
	// which may differ from the engine rate; playback folds the ratio into
	// the playback rate instead of resampling up front.
	Asset struct {
		Buffer gridbeat.AudioBuffer
		Rate   int
	}

	// Cache holds decoded assets keyed by asset id. Lookups never block on
	// decoding.
	Cache struct {
		mu     sync.RWMutex
		assets map[string]*Asset
	}
)

func NewCache() *Cache {
	return &Cache{assets: make(map[string]*Asset)}
}

// Get returns the decoded asset, or ok == false if the asset is unknown or
// still decoding.
func (c *Cache) Get(id string) (asset *Asset, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	asset, ok = c.assets[id]
	return asset, ok
}

// Ready reports whether the asset has finished decoding.
func (c *Cache) Ready(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Load decodes raw audio bytes and stores them under the id, synchronously.
func (c *Cache) Load(id string, data []byte) error {
	asset, err := Decode(data)
	if err != nil {
		return fmt.Errorf("loading asset %q: %w", id, err)
	}
	c.mu.Lock()
	c.assets[id] = asset
	c.mu.Unlock()
	return nil
}

// LoadAsync decodes in a background goroutine and calls done when the asset
// is available (or failed). The scheduler keeps treating the asset as silent
// until the cache is populated.
func (c *Cache) LoadAsync(id string, data []byte, done func(error)) {
	go func() {
		err := c.Load(id, data)
		if done != nil {
			done(err)
		}
	}()
}

// Store puts an already decoded asset into the cache, e.g. audio recorded
// in-app rather than imported from a file.
func (c *Cache) Store(id string, asset *Asset) {
	c.mu.Lock()
	c.assets[id] = asset
	c.mu.Unlock()
}

// Drop removes an asset, e.g. when the last track referencing it is deleted.
func (c *Cache) Drop(id string) {
	c.mu.Lock()
	delete(c.assets, id)
	c.mu.Unlock()
}

// Decode decodes WAV or MP3 bytes into a stereo float32 asset. Mono sources
// are duplicated to both channels.
func Decode(data []byte) (*Asset, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte("RIFF")) {
		return decodeWav(data)
	}
	if asset, err := decodeMp3(data); err == nil {
		return asset, nil
	}
	return nil, errors.New("unsupported or corrupt audio data")
}

func decodeWav(data []byte) (*Asset, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, errors.New("invalid wav data")
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	return fromIntBuffer(pcm)
}

// fromIntBuffer converts a decoded PCM buffer to a stereo float32 asset,
// normalizing by the source bit depth.
func fromIntBuffer(pcm *audio.IntBuffer) (*Asset, error) {
	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, errors.New("wav data has no channels")
	}
	bits := pcm.SourceBitDepth
	if bits == 0 {
		bits = 16
	}
	scale := float32(int(1) << (bits - 1))
	frames := len(pcm.Data) / channels
	buf := make(gridbeat.AudioBuffer, frames)
	for i := 0; i < frames; i++ {
		l := float32(pcm.Data[i*channels]) / scale
		r := l
		if channels > 1 {
			r = float32(pcm.Data[i*channels+1]) / scale
		}
		buf[i] = [2]float32{l, r}
	}
	return &Asset{Buffer: buf, Rate: pcm.Format.SampleRate}, nil
}

func decodeMp3(data []byte) (*Asset, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	// go-mp3 always outputs 16-bit little-endian stereo
	frames := len(raw) / 4
	buf := make(gridbeat.AudioBuffer, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		buf[i] = [2]float32{float32(l) / 32768, float32(r) / 32768}
	}
	return &Asset{Buffer: buf, Rate: d.SampleRate()}, nil
}

// Seconds returns the natural duration of the asset.
func (a *Asset) Seconds() float64 {
	if a.Rate <= 0 {
		return 0
	}
	return float64(len(a.Buffer)) / float64(a.Rate)
}
