package pattern

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// PhaseName identifies a breathing phase.
type PhaseName string

const (
	Inhale PhaseName = "inhale"
	Hold   PhaseName = "hold"
	Exhale PhaseName = "exhale"
)

// MinPhaseDuration is the floor applied to degenerate phase lengths.
const MinPhaseDuration = time.Millisecond

var (
	// ErrUnknownPattern indicates the requested pattern is not registered.
	ErrUnknownPattern = errors.New("unknown pattern")
	// ErrInvalidPattern indicates a pattern violates its invariants.
	ErrInvalidPattern = errors.New("invalid pattern")
)

var defaultPhases = [4]PhaseName{Inhale, Hold, Exhale, Hold}

// Label returns the text shown to the user for the phase.
func (name PhaseName) Label() string {
	switch name {
	case Inhale:
		return "Breathe in"
	case Hold:
		return "Hold"
	case Exhale:
		return "Breathe out"
	default:
		return string(name)
	}
}

// Valid reports whether name is one of the known phases.
func (name PhaseName) Valid() bool {
	return name == Inhale || name == Hold || name == Exhale
}

// Pattern is an ordered sequence of phase ratios.
//
// Phases overrides the default inhale/hold/exhale/hold naming slot by slot.
// Slots past the end of Phases, or left empty, fall back to the default cycle.
type Pattern struct {
	Name        string
	Ratios      []float64
	Phases      []PhaseName
	Description string
}

// Len returns the number of phases in one round.
func (pattern Pattern) Len() int {
	return len(pattern.Ratios)
}

// PhaseName resolves the phase name for a slot.
func (pattern Pattern) PhaseName(index int) PhaseName {
	if index >= 0 && index < len(pattern.Phases) && pattern.Phases[index] != "" {
		return pattern.Phases[index]
	}
	if index < 0 {
		index = -index
	}
	return defaultPhases[index%len(defaultPhases)]
}

// HoldLevel returns the visual level a hold at index keeps: 1 after an
// inhale, 0 after an exhale. The nearest preceding non-hold phase decides,
// wrapping around the round.
func (pattern Pattern) HoldLevel(index int) float64 {
	count := pattern.Len()
	if count == 0 {
		return 1
	}
	for step := 1; step <= count; step++ {
		previous := ((index-step)%count + count) % count
		switch pattern.PhaseName(previous) {
		case Inhale:
			return 1
		case Exhale:
			return 0
		}
	}
	return 1
}

// PhaseDuration returns the length of one phase for the given unit.
func (pattern Pattern) PhaseDuration(index int, unit time.Duration) time.Duration {
	if index < 0 || index >= pattern.Len() {
		return MinPhaseDuration
	}
	duration := time.Duration(math.Round(pattern.Ratios[index] * float64(unit)))
	if duration < MinPhaseDuration {
		return MinPhaseDuration
	}
	return duration
}

// RoundDuration returns the length of one full round.
func (pattern Pattern) RoundDuration(unit time.Duration) time.Duration {
	var total time.Duration
	for index := range pattern.Ratios {
		total += pattern.PhaseDuration(index, unit)
	}
	return total
}

// Validate checks the pattern invariants.
func (pattern Pattern) Validate() error {
	if pattern.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPattern)
	}
	if len(pattern.Ratios) == 0 {
		return fmt.Errorf("%w: %q has no phases", ErrInvalidPattern, pattern.Name)
	}
	for index, ratio := range pattern.Ratios {
		if !(ratio > 0) || math.IsInf(ratio, 0) {
			return fmt.Errorf("%w: %q ratio %d must be positive, got %v", ErrInvalidPattern, pattern.Name, index, ratio)
		}
	}
	for index, phase := range pattern.Phases {
		if phase != "" && !phase.Valid() {
			return fmt.Errorf("%w: %q phase %d is %q", ErrInvalidPattern, pattern.Name, index, phase)
		}
	}
	return nil
}
