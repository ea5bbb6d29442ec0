package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"breathpace/internal/core/pattern"
)

// ErrInvalidConfig indicates a session cannot start with the given settings.
var ErrInvalidConfig = errors.New("invalid config")

// maxNanoseconds is the first value a time.Duration cannot hold.
const maxNanoseconds = float64(math.MaxInt64)

// VisualMode selects how progress is drawn.
type VisualMode string

const (
	VisualCircle VisualMode = "circle"
	VisualSpiral VisualMode = "spiral"
)

// ParseVisualMode maps user input to a VisualMode, defaulting to circle.
func ParseVisualMode(value string) VisualMode {
	switch VisualMode(value) {
	case VisualSpiral, "serpent":
		return VisualSpiral
	default:
		return VisualCircle
	}
}

// Request is the configuration supplied by collaborators before a start.
type Request struct {
	PatternName string
	UnitSeconds float64
	TotalRounds int
	Visual      VisualMode
}

// PatternSource resolves pattern names.
type PatternSource interface {
	Lookup(name string) (pattern.Pattern, error)
}

// SessionConfig is the immutable configuration of one session.
type SessionConfig struct {
	Pattern     pattern.Pattern
	Unit        time.Duration
	TotalRounds int
	Visual      VisualMode
}

// Resolve validates a request and binds its pattern.
func Resolve(source PatternSource, request Request) (SessionConfig, error) {
	if !(request.UnitSeconds > 0) || math.IsInf(request.UnitSeconds, 0) {
		return SessionConfig{}, fmt.Errorf("%w: unit duration must be positive, got %v", ErrInvalidConfig, request.UnitSeconds)
	}
	if request.TotalRounds < 1 {
		return SessionConfig{}, fmt.Errorf("%w: rounds must be at least 1, got %d", ErrInvalidConfig, request.TotalRounds)
	}
	selected, err := source.Lookup(request.PatternName)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	nanoseconds := request.UnitSeconds * float64(time.Second)
	if nanoseconds >= maxNanoseconds {
		return SessionConfig{}, fmt.Errorf("%w: unit duration too long, got %vs", ErrInvalidConfig, request.UnitSeconds)
	}
	unit := time.Duration(math.Round(nanoseconds))
	if unit < time.Nanosecond {
		unit = time.Nanosecond
	}

	config := SessionConfig{
		Pattern:     selected,
		Unit:        unit,
		TotalRounds: request.TotalRounds,
		Visual:      ParseVisualMode(string(request.Visual)),
	}
	if err := config.Validate(); err != nil {
		return SessionConfig{}, err
	}
	return config, nil
}

// Validate checks the session invariants.
func (config SessionConfig) Validate() error {
	if config.Unit <= 0 {
		return fmt.Errorf("%w: unit duration must be positive, got %v", ErrInvalidConfig, config.Unit)
	}
	if config.TotalRounds < 1 {
		return fmt.Errorf("%w: rounds must be at least 1, got %d", ErrInvalidConfig, config.TotalRounds)
	}
	if err := config.Pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if config.totalNanoseconds() >= maxNanoseconds {
		return fmt.Errorf("%w: session length exceeds %v", ErrInvalidConfig, time.Duration(math.MaxInt64))
	}
	return nil
}

// totalNanoseconds computes the session length in floating point so that
// oversized configurations are caught before any Duration arithmetic.
func (config SessionConfig) totalNanoseconds() float64 {
	var round float64
	for _, ratio := range config.Pattern.Ratios {
		round += math.Max(math.Round(ratio*float64(config.Unit)), float64(pattern.MinPhaseDuration))
	}
	return round * float64(config.TotalRounds)
}

// PhaseDuration returns the length of phase index.
func (config SessionConfig) PhaseDuration(index int) time.Duration {
	return config.Pattern.PhaseDuration(index, config.Unit)
}

// Total returns the phase time of the whole session.
func (config SessionConfig) Total() time.Duration {
	return config.Pattern.RoundDuration(config.Unit) * time.Duration(config.TotalRounds)
}
