package sequencer

import (
	"time"

	"breathpace/internal/core/pattern"
)

// Status is the externally visible sequencer mode.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusCountingDown Status = "counting_down"
	StatusInPhase      Status = "in_phase"
	StatusPaused       Status = "paused"
	StatusComplete     Status = "complete"
)

// EventType defines the type of sequencer event.
type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventCountdownStep    EventType = "countdown_step"
	EventPhaseChanged     EventType = "phase_changed"
	EventSecondTick       EventType = "second_tick"
	EventRoundCompleted   EventType = "round_completed"
	EventSessionCompleted EventType = "session_completed"
	EventSessionAborted   EventType = "session_aborted"
	EventPaused           EventType = "paused"
	EventResumed          EventType = "resumed"
)

// Event is a notification for UI and audio collaborators.
type Event struct {
	Type            EventType
	SessionID       string
	Status          Status
	Phase           pattern.PhaseName
	PhaseIndex      int
	PhaseDuration   time.Duration
	Second          int
	Round           int
	RoundsCompleted int
	TotalRounds     int
	CountdownLabel  string
	At              time.Duration
}

// TimerKind identifies what a pending timer completes.
type TimerKind string

const (
	TimerCountdown TimerKind = "countdown"
	TimerPhaseEnd  TimerKind = "phase_end"
	TimerSecond    TimerKind = "second"
)

// Timer is a one-shot deadline requested by the machine. Generation ties the
// timer to the state it was issued for.
type Timer struct {
	Kind       TimerKind
	At         time.Duration
	Generation uint64
}
