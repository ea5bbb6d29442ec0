package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseNameDefaultCycle(t *testing.T) {
	box := Pattern{Name: "box", Ratios: []float64{1, 1, 1, 1}}
	want := []PhaseName{Inhale, Hold, Exhale, Hold, Inhale, Hold}
	for index, name := range want {
		assert.Equal(t, name, box.PhaseName(index), "slot %d", index)
	}
}

func TestPhaseNameOverride(t *testing.T) {
	table := DefaultTable()

	triangle, err := table.Lookup("1:1:1 Triangle 2")
	require.NoError(t, err)
	assert.Equal(t, Inhale, triangle.PhaseName(0))
	assert.Equal(t, Exhale, triangle.PhaseName(1))
	assert.Equal(t, Hold, triangle.PhaseName(2))

	named := Pattern{
		Name:   "named hold",
		Ratios: []float64{1, 1, 1},
		Phases: []PhaseName{Inhale, Hold, Exhale},
	}
	require.NoError(t, named.Validate())
	assert.Equal(t, Hold, named.PhaseName(1))
}

func TestPhaseNamePartialOverrideFallsBack(t *testing.T) {
	partial := Pattern{
		Name:   "partial",
		Ratios: []float64{1, 1, 1, 1},
		Phases: []PhaseName{Inhale, Exhale},
	}
	assert.Equal(t, Exhale, partial.PhaseName(1))
	assert.Equal(t, Exhale, partial.PhaseName(2))
	assert.Equal(t, Hold, partial.PhaseName(3))
}

func TestHoldLevelFollowsSequence(t *testing.T) {
	table := DefaultTable()

	box, err := table.Lookup("1:1:1:1 Box")
	require.NoError(t, err)
	assert.Equal(t, 1.0, box.HoldLevel(1))
	assert.Equal(t, 0.0, box.HoldLevel(3))

	triangle, err := table.Lookup("1:1:1 Triangle 2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, triangle.HoldLevel(2))

	calm, err := table.Lookup("1:4:2 Calm")
	require.NoError(t, err)
	assert.Equal(t, 1.0, calm.HoldLevel(1))

	allHold := Pattern{Name: "still", Ratios: []float64{1}, Phases: []PhaseName{Hold}}
	assert.Equal(t, 1.0, allHold.HoldLevel(0))
}

func TestRoundDurationMatchesPhaseSum(t *testing.T) {
	units := []time.Duration{
		time.Second,
		4 * time.Second,
		5500 * time.Millisecond,
		3333 * time.Millisecond,
	}
	for _, preset := range Presets() {
		for _, unit := range units {
			var sum float64
			for _, ratio := range preset.Ratios {
				sum += ratio
			}
			want := time.Duration(sum * float64(unit))
			got := preset.RoundDuration(unit)
			diff := got - want
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, time.Millisecond, "%s at %v", preset.Name, unit)
		}
	}
}

func TestPhaseDurationFloor(t *testing.T) {
	tiny := Pattern{Name: "tiny", Ratios: []float64{1e-9}}
	assert.Equal(t, MinPhaseDuration, tiny.PhaseDuration(0, time.Second))
	assert.Equal(t, MinPhaseDuration, tiny.PhaseDuration(5, time.Second))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		pattern Pattern
	}{
		{"no name", Pattern{Ratios: []float64{1}}},
		{"no phases", Pattern{Name: "empty"}},
		{"zero ratio", Pattern{Name: "zero", Ratios: []float64{1, 0, 1}}},
		{"negative ratio", Pattern{Name: "neg", Ratios: []float64{-1}}},
		{"bad phase", Pattern{Name: "bad", Ratios: []float64{1}, Phases: []PhaseName{"sigh"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.pattern.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPattern))
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := DefaultTable().Lookup("Kapalabhati")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable(
		Pattern{Name: "a", Ratios: []float64{1}},
		Pattern{Name: "a", Ratios: []float64{2}},
	)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMerge(t *testing.T) {
	base := DefaultTable()
	merged, err := base.Merge(
		Pattern{Name: "3:1 Energy", Ratios: []float64{3, 1}, Phases: []PhaseName{Inhale, Exhale}},
		Pattern{Name: "1:1 Balance", Ratios: []float64{2, 2}, Phases: []PhaseName{Inhale, Exhale}},
	)
	require.NoError(t, err)

	names := merged.Names()
	assert.Equal(t, base.Names()[0], names[0])
	assert.Equal(t, "3:1 Energy", names[len(names)-1])
	assert.Len(t, names, len(base.Names())+1)

	balance, err := merged.Lookup("1:1 Balance")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, balance.Ratios)

	original, err := base.Lookup("1:1 Balance")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, original.Ratios)

	_, err = base.Merge(Pattern{Name: "broken"})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestDescribe(t *testing.T) {
	table := DefaultTable()
	assert.Contains(t, table.Describe("4:7:8 Dream"), "falling asleep")
	assert.Empty(t, table.Describe("missing"))
}
