package pacer

import (
	"errors"
	"sync"
	"time"

	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"
	"breathpace/internal/core/sequencer"

	"github.com/rs/zerolog"
)

// ErrClosed indicates the pacer was shut down.
var ErrClosed = errors.New("pacer closed")

// Options contains runtime dependencies for Pacer.
type Options struct {
	Patterns      model.PatternSource
	CountdownStep time.Duration
	Scheduler     Scheduler
	Now           func() time.Duration
	NewID         func() string
	Logger        *zerolog.Logger
}

// Stats reports internal counters.
type Stats struct {
	Generation    uint64
	StaleTimers   uint64
	PendingTimers int
}

// Pacer drives a sequencer.Machine with real timers.
//
// Every timer callback and command runs under one mutex, so the machine sees
// a single execution context. After each call the pending timers are replaced
// by exactly the set the machine asks for.
type Pacer struct {
	mu      sync.Mutex
	options Options
	logger  zerolog.Logger
	machine *sequencer.Machine
	pending []Stopper
	events  []chan sequencer.Event
	closed  bool
}

// New creates a Pacer with the provided options.
func New(options Options) *Pacer {
	if options.Patterns == nil {
		options.Patterns = pattern.DefaultTable()
	}
	if options.Scheduler == nil {
		options.Scheduler = timerScheduler{}
	}
	if options.Now == nil {
		options.Now = MonotonicNow()
	}

	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = options.Logger.With().Str("component", "pacer").Logger()
	}

	pacer := &Pacer{
		options: options,
		logger:  logger,
	}
	pacer.machine = sequencer.New(sequencer.Options{
		CountdownStep: options.CountdownStep,
		NewID:         options.NewID,
		OnEvent:       pacer.handleEventLocked,
	})
	return pacer
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the pacer.
func (pacer *Pacer) Subscribe(buffer int) <-chan sequencer.Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan sequencer.Event, buffer)
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	if pacer.closed {
		close(ch)
		return ch
	}
	pacer.events = append(pacer.events, ch)
	return ch
}

// Start resolves the request and begins a session with its countdown.
func (pacer *Pacer) Start(request model.Request) error {
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	if pacer.closed {
		return ErrClosed
	}

	config, err := model.Resolve(pacer.options.Patterns, request)
	if err != nil {
		return err
	}
	if err := pacer.machine.Start(config, pacer.options.Now()); err != nil {
		return err
	}
	pacer.scheduleLocked()
	return nil
}

// SetPatterns replaces the table used by later Start calls. A running
// session keeps the pattern it was started with.
func (pacer *Pacer) SetPatterns(patterns model.PatternSource) {
	if patterns == nil {
		return
	}
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	pacer.options.Patterns = patterns
}

// Pause freezes the countdown or running phase.
func (pacer *Pacer) Pause() bool {
	return pacer.command(func(machine *sequencer.Machine, now time.Duration) bool {
		return machine.Pause(now)
	})
}

// Resume continues a paused session.
func (pacer *Pacer) Resume() bool {
	return pacer.command(func(machine *sequencer.Machine, now time.Duration) bool {
		return machine.Resume(now)
	})
}

// TogglePause resumes a paused session or pauses a running one.
func (pacer *Pacer) TogglePause() bool {
	return pacer.command(func(machine *sequencer.Machine, now time.Duration) bool {
		if machine.Status() == sequencer.StatusPaused {
			return machine.Resume(now)
		}
		return machine.Pause(now)
	})
}

// Abort returns to idle from any state.
func (pacer *Pacer) Abort() bool {
	return pacer.command(func(machine *sequencer.Machine, now time.Duration) bool {
		return machine.Abort(now)
	})
}

// Snapshot samples the session at the current instant.
func (pacer *Pacer) Snapshot() sequencer.Snapshot {
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	return pacer.machine.Snapshot(pacer.options.Now())
}

// Stats returns timer bookkeeping counters.
func (pacer *Pacer) Stats() Stats {
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	return Stats{
		Generation:    pacer.machine.Generation(),
		StaleTimers:   pacer.machine.Stale(),
		PendingTimers: len(pacer.pending),
	}
}

// Close aborts any session, cancels timers and closes observers.
func (pacer *Pacer) Close() {
	pacer.mu.Lock()
	if pacer.closed {
		pacer.mu.Unlock()
		return
	}
	pacer.machine.Abort(pacer.options.Now())
	pacer.closed = true
	pacer.stopPendingLocked()
	events := pacer.events
	pacer.events = nil
	pacer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (pacer *Pacer) command(apply func(*sequencer.Machine, time.Duration) bool) bool {
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	if pacer.closed {
		return false
	}
	changed := apply(pacer.machine, pacer.options.Now())
	if changed {
		pacer.scheduleLocked()
	}
	return changed
}

func (pacer *Pacer) fire(timer sequencer.Timer) {
	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	if pacer.closed {
		return
	}
	if !pacer.machine.Fire(timer, pacer.options.Now()) {
		pacer.logger.Debug().
			Str("kind", string(timer.Kind)).
			Uint64("generation", timer.Generation).
			Uint64("current", pacer.machine.Generation()).
			Msg("dropped stale timer")
		return
	}
	pacer.scheduleLocked()
}

func (pacer *Pacer) scheduleLocked() {
	pacer.stopPendingLocked()
	now := pacer.options.Now()
	for _, timer := range pacer.machine.Timers() {
		timer := timer
		delay := timer.At - now
		if delay < 0 {
			delay = 0
		}
		pacer.pending = append(pacer.pending, pacer.options.Scheduler.AfterFunc(delay, func() {
			pacer.fire(timer)
		}))
	}
}

func (pacer *Pacer) stopPendingLocked() {
	for _, stopper := range pacer.pending {
		stopper.Stop()
	}
	pacer.pending = nil
}

func (pacer *Pacer) handleEventLocked(event sequencer.Event) {
	pacer.logEvent(event)
	events := append([]chan sequencer.Event(nil), pacer.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}

func (pacer *Pacer) logEvent(event sequencer.Event) {
	var entry *zerolog.Event
	switch event.Type {
	case sequencer.EventSessionStarted, sequencer.EventSessionCompleted, sequencer.EventSessionAborted:
		entry = pacer.logger.Info()
	case sequencer.EventSecondTick:
		entry = pacer.logger.Trace()
	default:
		entry = pacer.logger.Debug()
	}
	entry.
		Str("event", string(event.Type)).
		Str("session", event.SessionID).
		Str("status", string(event.Status)).
		Str("phase", string(event.Phase)).
		Int("round", event.Round).
		Int("total_rounds", event.TotalRounds).
		Dur("at", event.At).
		Msg("session event")
}
