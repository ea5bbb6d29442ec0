package animation

import "math"

// Point is a position in canvas units.
type Point struct {
	X float64
	Y float64
}

// VisualSettings controls the spiral ribbon.
type VisualSettings struct {
	MaxLoops    float64
	LoopSpacing float64
	LineWidth   float64
	Steps       int
}

// baseAngle keeps the spiral's orientation fixed between frames.
const baseAngle = math.Pi / 2

// CircleScale maps a rendered value to the breathing circle's scale.
func CircleScale(progress float64) float64 {
	return 0.2 + 0.8*clamp01(progress)
}

// SpiralPoints returns the polyline of an Archimedean spiral revealed up to
// progress, centred in a width by height area. Nothing is drawn at 0.
func SpiralPoints(progress, width, height float64, settings VisualSettings) []Point {
	progress = clamp01(progress)
	maxTheta := 2 * math.Pi * math.Max(0, settings.MaxLoops)
	if maxTheta <= 0 || progress <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	steps := settings.Steps
	if steps <= 0 {
		steps = DefaultVisualSettings().Steps
	}

	centerX := width / 2
	centerY := height / 2
	available := math.Min(width, height)*0.5 - settings.LineWidth
	if available <= 0 {
		return nil
	}
	spacing := settings.LoopSpacing / (2 * math.Pi) * maxTheta
	radius := math.Min(available, spacing)
	scale := radius / maxTheta

	visible := maxTheta * progress
	step := visible / float64(steps)
	points := make([]Point, 0, steps+2)
	points = append(points, Point{X: centerX, Y: centerY})
	for i := 0; i <= steps; i++ {
		theta := float64(i) * step
		r := scale * theta
		angle := theta + baseAngle
		points = append(points, Point{
			X: centerX + r*math.Cos(angle),
			Y: centerY + r*math.Sin(angle),
		})
	}
	return points
}
