package animation

import "time"

// Config contains frame loop and easing values.
type Config struct {
	FrameInterval time.Duration
	Smoothing     float64
	Epsilon       float64
}

// DefaultConfig returns a 60 fps loop with gentle easing.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 16 * time.Millisecond,
		Smoothing:     0.18,
		Epsilon:       1e-3,
	}
}

// DefaultVisualSettings returns the spiral ribbon defaults.
func DefaultVisualSettings() VisualSettings {
	return VisualSettings{
		MaxLoops:    7,
		LoopSpacing: 14,
		LineWidth:   4,
		Steps:       900,
	}
}
