package animation

import (
	"math"

	"breathpace/internal/core/pattern"
)

// Frame is the per-frame input sampled from the session.
type Frame struct {
	Phase      pattern.PhaseName
	PhaseIndex int
	Round      int
	Progress   float64
	HoldLevel  float64
	Active     bool
}

// slot identifies one phase occurrence within a session.
type slot struct {
	phase pattern.PhaseName
	index int
	round int
}

// Renderer turns phase progress into a displayed value that never jumps
// mid-phase, never moves during a hold and never drifts from the target.
//
// Renderer is owned by the frame loop and must not be shared.
type Renderer struct {
	config   Config
	rendered float64
	last     slot
}

// NewRenderer creates a renderer resting at 0.
func NewRenderer(config Config) *Renderer {
	defaults := DefaultConfig()
	if !(config.Smoothing > 0 && config.Smoothing <= 1) {
		config.Smoothing = defaults.Smoothing
	}
	if !(config.Epsilon > 0) {
		config.Epsilon = defaults.Epsilon
	}
	return &Renderer{config: config}
}

// Target maps a frame to the level the display should settle on.
func Target(frame Frame) float64 {
	progress := clamp01(frame.Progress)
	switch frame.Phase {
	case pattern.Inhale:
		return progress
	case pattern.Exhale:
		return 1 - progress
	default:
		return clamp01(frame.HoldLevel)
	}
}

// Advance consumes one frame and returns the value to draw.
func (renderer *Renderer) Advance(frame Frame) float64 {
	if !frame.Active || frame.Phase == "" {
		renderer.Reset()
		return renderer.rendered
	}

	target := Target(frame)
	progress := clamp01(frame.Progress)
	current := slot{phase: frame.Phase, index: frame.PhaseIndex, round: frame.Round}
	phaseChanged := current != renderer.last
	atBoundary := progress == 0 || progress == 1
	renderer.last = current

	if phaseChanged || atBoundary || frame.Phase == pattern.Hold {
		renderer.rendered = target
		return renderer.rendered
	}

	next := renderer.rendered + (target-renderer.rendered)*renderer.config.Smoothing
	if math.Abs(next-target) < renderer.config.Epsilon {
		next = target
	}
	renderer.rendered = clamp01(next)
	return renderer.rendered
}

// Value returns the last rendered value.
func (renderer *Renderer) Value() float64 {
	return renderer.rendered
}

// Reset returns the renderer to rest.
func (renderer *Renderer) Reset() {
	renderer.rendered = 0
	renderer.last = slot{}
}

func clamp01(value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
