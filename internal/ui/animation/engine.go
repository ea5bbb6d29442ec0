package animation

import (
	"context"
	"sync"
	"time"

	"breathpace/internal/core/sequencer"
)

// FrameSource provides the session state sampled once per frame.
type FrameSource interface {
	Snapshot() sequencer.Snapshot
}

// Output is what a frame hands to the drawing code.
type Output struct {
	Snapshot sequencer.Snapshot
	Rendered float64
}

// Engine runs the frame loop for the session visual.
type Engine struct {
	mu       sync.Mutex
	config   Config
	source   FrameSource
	draw     func(Output)
	renderer *Renderer
	cancel   context.CancelFunc
}

// New creates a new animation engine.
func New(config Config, source FrameSource, draw func(Output)) *Engine {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultConfig().FrameInterval
	}
	return &Engine{
		config:   config,
		source:   source,
		draw:     draw,
		renderer: NewRenderer(config),
	}
}

// FrameFromSnapshot converts a session snapshot to renderer input.
func FrameFromSnapshot(snapshot sequencer.Snapshot) Frame {
	return Frame{
		Phase:      snapshot.Phase,
		PhaseIndex: snapshot.PhaseIndex,
		Round:      snapshot.Round,
		Progress:   snapshot.PhaseProgress,
		HoldLevel:  snapshot.HoldLevel,
		Active:     snapshot.InPhase(),
	}
}

// Start runs the frame loop until ctx is cancelled or Stop is called.
func (engine *Engine) Start(ctx context.Context) {
	engine.start(ctx, func(runCtx context.Context) {
		for {
			engine.Step()
			if !sleepWithContext(runCtx, engine.config.FrameInterval) {
				return
			}
		}
	})
}

// Step renders a single frame.
func (engine *Engine) Step() Output {
	snapshot := engine.source.Snapshot()

	engine.mu.Lock()
	rendered := engine.renderer.Advance(FrameFromSnapshot(snapshot))
	draw := engine.draw
	engine.mu.Unlock()

	output := Output{Snapshot: snapshot, Rendered: rendered}
	if draw != nil {
		draw(output)
	}
	return output
}

// Stop terminates the frame loop.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
