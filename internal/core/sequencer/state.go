package sequencer

// state is the tagged variant behind Status. Each variant carries only the
// fields valid in that mode; timing lives in the clock and the gate.
type state interface {
	status() Status
}

type idleState struct{}

type countdownState struct{}

type countdownPausedState struct{}

type phaseState struct {
	index int
}

type phasePausedState struct {
	index int
}

type completeState struct{}

func (idleState) status() Status            { return StatusIdle }
func (countdownState) status() Status       { return StatusCountingDown }
func (countdownPausedState) status() Status { return StatusPaused }
func (phaseState) status() Status           { return StatusInPhase }
func (phasePausedState) status() Status     { return StatusPaused }
func (completeState) status() Status        { return StatusComplete }

func isActive(current state) bool {
	switch current.(type) {
	case countdownState, countdownPausedState, phaseState, phasePausedState:
		return true
	default:
		return false
	}
}
