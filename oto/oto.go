// Package oto wraps the oto/v3 audio backend. There can be only one audio
// context per process; the context pulls interleaved float32 stereo frames
// from an io.Reader, which is how the engine Player hands off its output.
package oto

import (
	"fmt"
	"io"

	oto "github.com/ebitengine/oto/v3"

	"github.com/gridbeat/gridbeat"
)

type (
	Context struct {
		ctx *oto.Context
	}

	Player struct {
		player *oto.Player
	}
)

// NewContext opens the audio device and blocks until it is ready.
func NewContext() (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   gridbeat.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx}, nil
}

// Play starts pulling audio from the reader. The device keeps pulling until
// the player is closed; a reader that never returns io.EOF plays forever.
func (c *Context) Play(r io.Reader) *Player {
	p := c.ctx.NewPlayer(r)
	p.Play()
	return &Player{player: p}
}

// Suspend pauses the device without tearing it down; Resume undoes it.
func (c *Context) Suspend() error { return c.ctx.Suspend() }
func (c *Context) Resume() error  { return c.ctx.Resume() }

func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close player: %w", err)
	}
	return nil
}
