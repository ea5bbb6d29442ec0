package sequencer

import (
	"time"

	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"
)

// Snapshot is the read-only view collaborators sample once per frame.
type Snapshot struct {
	SessionID       string
	Status          Status
	Pattern         string
	Visual          model.VisualMode
	Phase           pattern.PhaseName
	PhaseIndex      int
	PhaseProgress   float64
	PhaseSecond     int
	HoldLevel       float64
	Round           int
	RoundsCompleted int
	TotalRounds     int
	Running         bool
	Paused          bool
	CountdownLabel  string
	Elapsed         time.Duration
	Total           time.Duration
}

// InPhase reports whether a phase is loaded, running or paused.
func (snapshot Snapshot) InPhase() bool {
	return snapshot.Phase != ""
}

// Remaining returns the phase time left in the session.
func (snapshot Snapshot) Remaining() time.Duration {
	if snapshot.Total <= snapshot.Elapsed {
		return 0
	}
	return snapshot.Total - snapshot.Elapsed
}

// Snapshot observes the machine at now without changing it.
func (machine *Machine) Snapshot(now time.Duration) Snapshot {
	snapshot := Snapshot{
		SessionID:       machine.sessionID,
		Status:          machine.state.status(),
		Pattern:         machine.config.Pattern.Name,
		Visual:          machine.config.Visual,
		PhaseIndex:      -1,
		Round:           machine.round(),
		RoundsCompleted: machine.roundsCompleted,
		TotalRounds:     machine.config.TotalRounds,
		Running:         isActive(machine.state),
		CountdownLabel:  machine.gate.Label(),
		Elapsed:         machine.completedTime,
	}
	if _, idle := machine.state.(idleState); idle {
		snapshot.RoundsCompleted = 0
		snapshot.Elapsed = 0
		return snapshot
	}
	snapshot.Total = machine.config.Total()

	switch machine.state.(type) {
	case countdownPausedState, phasePausedState:
		snapshot.Paused = true
	}

	if index, ok := machine.phaseIndex(); ok {
		reading, _ := machine.clock.Tick(now)
		snapshot.Phase = machine.phaseName(index)
		snapshot.PhaseIndex = index
		snapshot.PhaseProgress = reading.Progress
		snapshot.PhaseSecond = reading.Second
		snapshot.HoldLevel = machine.config.Pattern.HoldLevel(index)
		snapshot.Elapsed += reading.Elapsed
	}
	return snapshot
}
