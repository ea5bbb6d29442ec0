package animation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleScale(t *testing.T) {
	assert.InDelta(t, 0.2, CircleScale(0), 1e-12)
	assert.InDelta(t, 0.6, CircleScale(0.5), 1e-12)
	assert.InDelta(t, 1.0, CircleScale(1), 1e-12)
	assert.InDelta(t, 1.0, CircleScale(7), 1e-12)
	assert.InDelta(t, 0.2, CircleScale(math.NaN()), 1e-12)
}

func TestSpiralDrawsNothingAtRest(t *testing.T) {
	settings := DefaultVisualSettings()
	assert.Nil(t, SpiralPoints(0, 400, 400, settings))
	assert.Nil(t, SpiralPoints(0.5, 0, 400, settings))
	assert.Nil(t, SpiralPoints(0.5, 400, 400, VisualSettings{Steps: 10}))
}

func TestSpiralFullProgress(t *testing.T) {
	settings := DefaultVisualSettings()
	points := SpiralPoints(1, 400, 400, settings)
	require.Len(t, points, settings.Steps+2)

	assert.Equal(t, Point{X: 200, Y: 200}, points[0])

	// Seven loops spaced 14 apart reach a radius of 98, ending straight below the centre.
	last := points[len(points)-1]
	assert.InDelta(t, 200, last.X, 1e-6)
	assert.InDelta(t, 298, last.Y, 1e-6)
}

func TestSpiralIsPure(t *testing.T) {
	settings := DefaultVisualSettings()
	first := SpiralPoints(0.37, 320, 240, settings)
	second := SpiralPoints(0.37, 320, 240, settings)
	assert.Equal(t, first, second)
}

func TestSpiralFitsSmallArea(t *testing.T) {
	settings := DefaultVisualSettings()
	points := SpiralPoints(1, 100, 60, settings)
	require.NotEmpty(t, points)

	limit := 60*0.5 - settings.LineWidth
	for _, point := range points {
		radius := math.Hypot(point.X-50, point.Y-30)
		assert.LessOrEqual(t, radius, limit+1e-9)
	}
}
