package model

import (
	"testing"
	"time"

	"breathpace/internal/core/pattern"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	config, err := Resolve(pattern.DefaultTable(), Request{
		PatternName: "1:1 Balance",
		UnitSeconds: 4,
		TotalRounds: 2,
		Visual:      "serpent",
	})
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, config.Unit)
	assert.Equal(t, VisualSpiral, config.Visual)
	assert.Equal(t, 16*time.Second, config.Total())
	assert.Equal(t, 4*time.Second, config.PhaseDuration(1))
}

func TestResolveRejects(t *testing.T) {
	cases := []struct {
		name    string
		request Request
		unknown bool
	}{
		{"zero unit", Request{PatternName: "1:1 Balance", UnitSeconds: 0, TotalRounds: 1}, false},
		{"negative unit", Request{PatternName: "1:1 Balance", UnitSeconds: -2, TotalRounds: 1}, false},
		{"zero rounds", Request{PatternName: "1:1 Balance", UnitSeconds: 4, TotalRounds: 0}, false},
		{"unknown pattern", Request{PatternName: "Tummo", UnitSeconds: 4, TotalRounds: 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(pattern.DefaultTable(), tc.request)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			if tc.unknown {
				assert.ErrorIs(t, err, pattern.ErrUnknownPattern)
			}
		})
	}
}

func TestValidateRejectsEmptyPattern(t *testing.T) {
	config := SessionConfig{Unit: time.Second, TotalRounds: 1, Pattern: pattern.Pattern{Name: "empty"}}
	err := config.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)
}

func TestParseVisualMode(t *testing.T) {
	assert.Equal(t, VisualCircle, ParseVisualMode(""))
	assert.Equal(t, VisualCircle, ParseVisualMode("circle"))
	assert.Equal(t, VisualSpiral, ParseVisualMode("spiral"))
}

func TestResolveTinyUnitUsesPhaseFloor(t *testing.T) {
	config, err := Resolve(pattern.DefaultTable(), Request{PatternName: "1:1 Balance", UnitSeconds: 1e-10, TotalRounds: 1})
	require.NoError(t, err)
	assert.Equal(t, time.Nanosecond, config.Unit)
	assert.Equal(t, pattern.MinPhaseDuration, config.PhaseDuration(0))
	assert.Equal(t, 2*pattern.MinPhaseDuration, config.Total())
}

func TestResolveRejectsUnrepresentableLengths(t *testing.T) {
	_, err := Resolve(pattern.DefaultTable(), Request{PatternName: "1:1 Balance", UnitSeconds: 1e6, TotalRounds: 10_000_000})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Resolve(pattern.DefaultTable(), Request{PatternName: "1:1 Balance", UnitSeconds: 1e10, TotalRounds: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	config, err := Resolve(pattern.DefaultTable(), Request{PatternName: "1:1 Balance", UnitSeconds: 1e6, TotalRounds: 1000})
	require.NoError(t, err)
	assert.Equal(t, 2000*1e6*time.Second, config.Total())
}
