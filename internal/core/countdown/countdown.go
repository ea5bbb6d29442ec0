package countdown

import "time"

// Sequence holds the pre-roll labels in order.
var Sequence = []string{"Ready", "Set", "Go!"}

// DefaultStep is the time each label is shown.
const DefaultStep = time.Second

// Gate runs the pre-roll before the first phase.
//
// Pausing freezes the current step. Resuming restarts that step's full
// duration; partially elapsed time is dropped.
type Gate struct {
	stepDuration time.Duration
	step         int
	active       bool
	paused       bool
	stepStart    time.Duration
}

// New creates a gate with the given step duration.
func New(step time.Duration) Gate {
	if step <= 0 {
		step = DefaultStep
	}
	return Gate{stepDuration: step}
}

// Begin starts the sequence at its first step.
func (gate *Gate) Begin(now time.Duration) {
	if gate.stepDuration <= 0 {
		gate.stepDuration = DefaultStep
	}
	gate.step = 0
	gate.active = true
	gate.paused = false
	gate.stepStart = now
}

// Cancel discards the sequence.
func (gate *Gate) Cancel() {
	gate.active = false
	gate.paused = false
	gate.step = 0
}

// Active reports whether the pre-roll is running or paused.
func (gate *Gate) Active() bool {
	return gate.active
}

// Paused reports whether the pre-roll is frozen.
func (gate *Gate) Paused() bool {
	return gate.active && gate.paused
}

// Step returns the current step index.
func (gate *Gate) Step() int {
	return gate.step
}

// Label returns the text for the current step, or "" when inactive.
func (gate *Gate) Label() string {
	if !gate.active || gate.step >= len(Sequence) {
		return ""
	}
	return Sequence[gate.step]
}

// DeadlineAt returns when the current step ends.
func (gate *Gate) DeadlineAt() (time.Duration, bool) {
	if !gate.active || gate.paused {
		return 0, false
	}
	return gate.stepStart + gate.stepDuration, true
}

// Advance moves through every step that ended by now. It reports whether the
// step changed and whether the sequence finished; finishedAt is the exact
// instant the last step ended.
func (gate *Gate) Advance(now time.Duration) (stepped, finished bool, finishedAt time.Duration) {
	if !gate.active || gate.paused {
		return false, false, 0
	}
	for now >= gate.stepStart+gate.stepDuration {
		gate.stepStart += gate.stepDuration
		gate.step++
		stepped = true
		if gate.step >= len(Sequence) {
			gate.active = false
			return stepped, true, gate.stepStart
		}
	}
	return stepped, false, 0
}

// Pause freezes the current step.
func (gate *Gate) Pause() {
	if !gate.active {
		return
	}
	gate.paused = true
}

// Resume restarts the frozen step from zero at now.
func (gate *Gate) Resume(now time.Duration) {
	if !gate.active || !gate.paused {
		return
	}
	gate.paused = false
	gate.stepStart = now
}
