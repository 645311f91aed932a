package engine

import (
	"fmt"
	"math"

	"github.com/gridbeat/gridbeat"
	"github.com/gridbeat/gridbeat/sample"
)

const renderQuantum = 2048

// RenderSong renders one pass of the loop offline, faster than real time.
// Every quarter-step of the loop is triggered up front at its exact frame
// position, then the result is rendered in fixed quanta until the last voice
// and the effect tails have died down. All referenced assets must already be
// decoded in the cache.
func RenderSong(project gridbeat.Project, cache *sample.Cache) (gridbeat.AudioBuffer, error) {
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	for _, t := range project.Tracks {
		if t.AssetID != "" && !cache.Ready(t.AssetID) {
			return nil, fmt.Errorf("render: asset %q not loaded", t.AssetID)
		}
	}
	p := NewPlayer(NewBroker(), cache)
	p.project = project
	p.project.Unpack()
	p.playing = true

	stepSeconds := p.project.StepSeconds()
	subFrames := stepSeconds / 4 * gridbeat.SampleRate
	loop := int64(p.project.Steps) * 4
	for sub := int64(0); sub < loop; sub++ {
		p.trigger(sub, int64(math.Round(float64(sub)*subFrames)), stepSeconds)
	}

	end := int64(math.Round(float64(loop) * subFrames))
	for _, v := range p.voices {
		if v.end > end {
			end = v.end
		}
	}
	end += int64(reverbSeconds * gridbeat.SampleRate)

	out := make(gridbeat.AudioBuffer, 0, end)
	for p.frame < end {
		n := renderQuantum
		if left := end - p.frame; left < int64(n) {
			n = int(left)
		}
		buf := make(gridbeat.AudioBuffer, n)
		p.Render(buf)
		out = append(out, buf...)
	}
	return out, nil
}
