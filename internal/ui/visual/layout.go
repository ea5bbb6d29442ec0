package visual

import (
	"fmt"
	"time"

	"breathpace/internal/core/model"
	"breathpace/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// ribbon draws the spiral polyline with a fixed pool of line segments.
type ribbon struct {
	settings  animation.VisualSettings
	lines     []*canvas.Line
	container *fyne.Container
}

func newRibbon(settings animation.VisualSettings) *ribbon {
	lines := make([]*canvas.Line, maxSegments)
	objects := make([]fyne.CanvasObject, maxSegments)
	for index := range lines {
		line := canvas.NewLine(strokeColor)
		line.StrokeWidth = float32(settings.LineWidth)
		line.Hide()
		lines[index] = line
		objects[index] = line
	}
	return &ribbon{
		settings:  settings,
		lines:     lines,
		container: container.NewWithoutLayout(objects...),
	}
}

// update places the visible segments for progress inside size.
func (ribbon *ribbon) update(progress float64, size fyne.Size) {
	points := animation.SpiralPoints(progress, float64(size.Width), float64(size.Height), ribbon.settings)
	stride := segmentStride(len(points), len(ribbon.lines))

	used := 0
	for from := 0; from+1 < len(points) && used < len(ribbon.lines); from += stride {
		to := from + stride
		if to >= len(points) {
			to = len(points) - 1
		}
		line := ribbon.lines[used]
		line.Position1 = fyne.NewPos(float32(points[from].X), float32(points[from].Y))
		line.Position2 = fyne.NewPos(float32(points[to].X), float32(points[to].Y))
		line.Show()
		line.Refresh()
		used++
	}
	for _, line := range ribbon.lines[used:] {
		if line.Visible() {
			line.Hide()
		}
	}
}

// segmentStride returns how many points each line spans so that at most
// segments lines cover the polyline.
func segmentStride(points, segments int) int {
	if points < 2 || segments <= 0 {
		return 1
	}
	stride := (points - 1 + segments - 1) / segments
	if stride < 1 {
		return 1
	}
	return stride
}

// stageLayout centres the visual and stacks the phase and second labels on top.
type stageLayout struct {
	visual *Window
}

func (stage *stageLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	circle := objects[0]
	spiral := objects[1]
	phase := objects[2]
	second := objects[3]

	pad := size.Height * 0.03
	phaseSize := phase.MinSize()
	phase.Move(fyne.NewPos(0, pad))
	phase.Resize(fyne.NewSize(size.Width, phaseSize.Height))

	secondSize := second.MinSize()
	secondY := pad + phaseSize.Height + 4
	second.Move(fyne.NewPos(0, secondY))
	second.Resize(fyne.NewSize(size.Width, secondSize.Height))

	top := secondY + secondSize.Height + pad
	areaHeight := size.Height - top - pad
	if areaHeight < 0 {
		areaHeight = 0
	}
	side := areaHeight
	if size.Width < side {
		side = size.Width
	}
	side *= 0.9
	originX := (size.Width - side) / 2
	originY := top + (areaHeight-side)/2

	rendered := stage.visual.view.rendered
	if stage.visual.visual == model.VisualSpiral {
		circle.Hide()
		spiral.Show()
		spiral.Move(fyne.NewPos(originX, originY))
		spiral.Resize(fyne.NewSize(side, side))
		stage.visual.ribbon.update(rendered, fyne.NewSize(side, side))
		return
	}

	spiral.Hide()
	circle.Show()
	diameter := side * float32(animation.CircleScale(rendered))
	circle.Move(fyne.NewPos(originX+(side-diameter)/2, originY+(side-diameter)/2))
	circle.Resize(fyne.NewSize(diameter, diameter))
}

func (stage *stageLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	phaseSize := objects[2].MinSize()
	secondSize := objects[3].MinSize()
	width := phaseSize.Width
	if secondSize.Width > width {
		width = secondSize.Width
	}
	if width < 200 {
		width = 200
	}
	return fyne.NewSize(width, phaseSize.Height+secondSize.Height+200)
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
