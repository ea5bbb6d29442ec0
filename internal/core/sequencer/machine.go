package sequencer

import (
	"errors"
	"time"

	"breathpace/internal/core/clock"
	"breathpace/internal/core/countdown"
	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"

	"github.com/google/uuid"
)

// ErrSessionActive indicates Start was called while a session is running.
var ErrSessionActive = errors.New("session already active")

// Options configures a Machine.
type Options struct {
	CountdownStep time.Duration
	OnEvent       func(Event)
	NewID         func() string
}

// Machine sequences countdown, phases and rounds for one session at a time.
//
// Machine is not safe for concurrent use. Every method takes the current
// instant explicitly; callers read their clock once per callback.
type Machine struct {
	options Options

	config          model.SessionConfig
	state           state
	clock           clock.Clock
	gate            countdown.Gate
	sessionID       string
	roundsCompleted int
	completedTime   time.Duration

	generation uint64
	stale      uint64
}

// New creates an idle machine.
func New(options Options) *Machine {
	if options.CountdownStep <= 0 {
		options.CountdownStep = countdown.DefaultStep
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}
	return &Machine{
		options: options,
		state:   idleState{},
		gate:    countdown.New(options.CountdownStep),
	}
}

// Status returns the current mode.
func (machine *Machine) Status() Status {
	return machine.state.status()
}

// Generation returns the current state generation.
func (machine *Machine) Generation() uint64 {
	return machine.generation
}

// Stale returns how many timer callbacks were discarded as outdated.
func (machine *Machine) Stale() uint64 {
	return machine.stale
}

// Config returns the configuration of the current or last session.
func (machine *Machine) Config() model.SessionConfig {
	return machine.config
}

// Start validates config and begins the countdown. Nothing changes on error.
func (machine *Machine) Start(config model.SessionConfig, now time.Duration) error {
	if isActive(machine.state) {
		return ErrSessionActive
	}
	if err := config.Validate(); err != nil {
		return err
	}

	machine.config = config
	machine.clock.Stop()
	machine.roundsCompleted = 0
	machine.completedTime = 0
	machine.sessionID = machine.options.NewID()
	machine.gate.Begin(now)
	machine.state = countdownState{}
	machine.generation++

	machine.emit(EventSessionStarted, now)
	machine.emit(EventCountdownStep, now)
	return nil
}

// Advance applies every countdown step and phase completion due by now.
func (machine *Machine) Advance(now time.Duration) {
	for {
		switch machine.state.(type) {
		case countdownState:
			stepped, finished, at := machine.gate.Advance(now)
			if finished {
				machine.enterPhase(0, at)
				continue
			}
			if stepped {
				machine.generation++
				machine.emit(EventCountdownStep, now)
			}
			return
		case phaseState:
			reading, _ := machine.clock.Tick(now)
			if reading.Completed {
				machine.completePhase()
				continue
			}
			if _, changed := machine.clock.StepSecond(now); changed {
				machine.generation++
				machine.emit(EventSecondTick, now)
			}
			return
		default:
			return
		}
	}
}

// Fire delivers an expired timer. Timers from an older generation are
// dropped and reported as false.
func (machine *Machine) Fire(timer Timer, now time.Duration) bool {
	if timer.Generation != machine.generation {
		machine.stale++
		return false
	}
	machine.Advance(now)
	return true
}

// Timers returns the deadlines the current state needs: at most one
// countdown or phase-end timer and one second tick.
func (machine *Machine) Timers() []Timer {
	switch machine.state.(type) {
	case countdownState:
		deadline, ok := machine.gate.DeadlineAt()
		if !ok {
			return nil
		}
		return []Timer{{Kind: TimerCountdown, At: deadline, Generation: machine.generation}}
	case phaseState:
		end := machine.clock.EndsAt()
		timers := []Timer{{Kind: TimerPhaseEnd, At: end, Generation: machine.generation}}
		if next, ok := machine.clock.NextSecondAt(); ok && next < end {
			timers = append(timers, Timer{Kind: TimerSecond, At: next, Generation: machine.generation})
		}
		return timers
	default:
		return nil
	}
}

// Pause freezes the countdown or the running phase. It reports whether
// anything was paused.
func (machine *Machine) Pause(now time.Duration) bool {
	machine.Advance(now)
	switch current := machine.state.(type) {
	case countdownState:
		machine.gate.Pause()
		machine.state = countdownPausedState{}
	case phaseState:
		machine.clock.Pause(now)
		machine.state = phasePausedState{index: current.index}
	default:
		return false
	}
	machine.generation++
	machine.emit(EventPaused, now)
	return true
}

// Resume continues a paused countdown or phase. It reports whether anything
// was resumed.
func (machine *Machine) Resume(now time.Duration) bool {
	switch current := machine.state.(type) {
	case countdownPausedState:
		machine.gate.Resume(now)
		machine.state = countdownState{}
	case phasePausedState:
		machine.clock.Resume(now)
		machine.state = phaseState{index: current.index}
	default:
		return false
	}
	machine.generation++
	machine.emit(EventResumed, now)
	machine.Advance(now)
	return true
}

// Abort returns to idle from any state. It reports whether a running session
// was cut short.
func (machine *Machine) Abort(now time.Duration) bool {
	if _, idle := machine.state.(idleState); idle {
		return false
	}
	aborted := isActive(machine.state)
	if aborted {
		machine.emit(EventSessionAborted, now)
	}
	machine.gate.Cancel()
	machine.clock.Stop()
	machine.state = idleState{}
	machine.generation++
	return aborted
}

func (machine *Machine) enterPhase(index int, at time.Duration) {
	machine.clock.StartPhase(index, machine.config.PhaseDuration(index), at, 0)
	machine.state = phaseState{index: index}
	machine.generation++
	machine.emit(EventPhaseChanged, at)
}

// completePhase closes the running phase at its exact end. Round completion
// and the round limit are decided in the same step, so the final phase goes
// straight to complete.
func (machine *Machine) completePhase() {
	end := machine.clock.EndsAt()
	index := machine.clock.Index()
	machine.completedTime += machine.clock.Duration()

	next := index + 1
	if next < machine.config.Pattern.Len() {
		machine.enterPhase(next, end)
		return
	}

	machine.roundsCompleted++
	machine.emit(EventRoundCompleted, end)
	if machine.roundsCompleted >= machine.config.TotalRounds {
		machine.clock.Stop()
		machine.state = completeState{}
		machine.generation++
		machine.emit(EventSessionCompleted, end)
		return
	}
	machine.enterPhase(0, end)
}

func (machine *Machine) emit(eventType EventType, at time.Duration) {
	if machine.options.OnEvent == nil {
		return
	}
	event := Event{
		Type:            eventType,
		SessionID:       machine.sessionID,
		Status:          machine.state.status(),
		PhaseIndex:      -1,
		Round:           machine.round(),
		RoundsCompleted: machine.roundsCompleted,
		TotalRounds:     machine.config.TotalRounds,
		CountdownLabel:  machine.gate.Label(),
		At:              at,
	}
	if index, ok := machine.phaseIndex(); ok {
		event.Phase = machine.phaseName(index)
		event.PhaseIndex = index
		event.PhaseDuration = machine.clock.Duration()
		reading, _ := machine.clock.Tick(at)
		event.Second = reading.Second
	}
	machine.options.OnEvent(event)
}

func (machine *Machine) phaseIndex() (int, bool) {
	switch current := machine.state.(type) {
	case phaseState:
		return current.index, true
	case phasePausedState:
		return current.index, true
	default:
		return -1, false
	}
}

func (machine *Machine) round() int {
	switch machine.state.(type) {
	case idleState:
		return 0
	case completeState:
		return machine.config.TotalRounds
	}
	round := machine.roundsCompleted + 1
	if round > machine.config.TotalRounds {
		return machine.config.TotalRounds
	}
	return round
}

func (machine *Machine) phaseName(index int) pattern.PhaseName {
	return machine.config.Pattern.PhaseName(index)
}
