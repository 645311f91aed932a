package gridbeat

import "math"

// clipSnap is the placement granularity of audio clips, in steps. All clip
// edits snap their deltas to this granularity before anything else.
const clipSnap = 0.25

// minClipSteps is the shortest allowed clip duration, in steps.
const minClipSteps = 0.25

type (
	// Clip is a freely positioned, trimmable segment of an audio asset on an
	// audio-lane track. Clips are independent of the Grid: StartStep and
	// DurationSteps are real numbers quantized to quarter-step granularity.
	// Offset is how far into the source asset playback starts, in seconds.
	// OriginalDurationSteps records the asset's natural length in steps at
	// the time the clip was created.
	Clip struct {
		ID                    string  `yaml:"id" json:"id"`
		StartStep             float64 `yaml:"startStep" json:"startStep"`
		DurationSteps         float64 `yaml:"durationSteps" json:"durationSteps"`
		Offset                float64 `yaml:"offset" json:"offset"`
		OriginalDurationSteps float64 `yaml:"originalDurationSteps" json:"originalDurationSteps"`
	}

	// ClipPlacement is the persisted form of a clip, tagging it with the ID
	// of the track that owns it. The clip fields are flattened into the
	// placement in both YAML and JSON.
	ClipPlacement struct {
		TrackID int `yaml:"trackId" json:"trackId"`
		Clip    `yaml:",inline"`
	}
)

// SnapSteps quantizes a step position or delta to the clip placement
// granularity.
func SnapSteps(steps float64) float64 {
	return math.Round(steps/clipSnap) * clipSnap
}

// Move returns the clip shifted by deltaSteps, snapped and clamped so the
// clip never starts before step 0.
func (c Clip) Move(deltaSteps float64) Clip {
	c.StartStep = math.Max(0, c.StartStep+SnapSteps(deltaSteps))
	return c
}

// Resize returns the clip with its right edge dragged by deltaSteps, snapped
// and clamped to the minimum clip duration.
func (c Clip) Resize(deltaSteps float64) Clip {
	c.DurationSteps = math.Max(minClipSteps, c.DurationSteps+SnapSteps(deltaSteps))
	return c
}

// TrimLeft returns the clip with its left edge dragged by deltaSteps at the
// given step length in seconds. A left trim changes start, duration and
// source offset together, so the delta is clamped once against the tightest
// of the three constraints (offset ≥ 0, duration ≥ minimum, start ≥ 0) and
// all three fields are then recomputed from the same clamped delta. Clamping
// the fields independently would desynchronize offset from duration and corrupt
// playback, so that is never done.
func (c Clip) TrimLeft(deltaSteps, stepSeconds float64) Clip {
	delta := SnapSteps(deltaSteps)
	if stepSeconds <= 0 {
		return c
	}
	if low := -c.Offset / stepSeconds; delta < low {
		delta = low
	}
	if low := -c.StartStep; delta < low {
		delta = low
	}
	if high := c.DurationSteps - minClipSteps; delta > high {
		delta = high
	}
	c.StartStep += delta
	c.DurationSteps -= delta
	c.Offset += delta * stepSeconds
	return c
}
