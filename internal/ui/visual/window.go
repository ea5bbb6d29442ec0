package visual

import (
	"fmt"
	"image/color"

	"breathpace/internal/core/model"
	"breathpace/internal/core/sequencer"
	"breathpace/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Config defines the session window visuals.
type Config struct {
	Title  string
	Spiral animation.VisualSettings
}

// Callbacks defines the window's control handlers.
type Callbacks struct {
	OnStart       func()
	OnTogglePause func()
	OnStop        func()
	OnPreferences func()
	// OnClose replaces the default hide-on-close behaviour when set.
	OnClose func()
}

var (
	strokeColor     = color.NRGBA{R: 0x0f, G: 0x7f, B: 0x92, A: 0xff}
	fillColor       = color.NRGBA{R: 0x25, G: 0x87, B: 0x9e, A: 0x73}
	backgroundColor = color.NRGBA{R: 0xf4, G: 0xfa, B: 0xfb, A: 0xff}
	textColor       = color.NRGBA{R: 0x12, G: 0x3a, B: 0x42, A: 0xff}
)

// maxSegments bounds the line objects used for the spiral ribbon.
const maxSegments = 300

// Window shows the breathing visual, labels and session controls.
type Window struct {
	window    fyne.Window
	config    Config
	callbacks Callbacks

	circle       *canvas.Circle
	ribbon       *ribbon
	stage        *fyne.Container
	phaseLabel   *canvas.Text
	secondLabel  *canvas.Text
	roundLabel   *canvas.Text
	elapsedLabel *canvas.Text
	startButton  *widget.Button
	pauseButton  *widget.Button
	stopButton   *widget.Button

	visual model.VisualMode
	view   view
}

// New creates the session window.
func New(app fyne.App, config Config, callbacks Callbacks) *Window {
	if config.Title == "" {
		config.Title = "Breathpace"
	}
	if config.Spiral.MaxLoops <= 0 {
		config.Spiral = animation.DefaultVisualSettings()
	}

	window := app.NewWindow(config.Title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	background := canvas.NewRectangle(backgroundColor)

	circle := canvas.NewCircle(fillColor)
	circle.StrokeColor = strokeColor
	circle.StrokeWidth = 3

	ribbon := newRibbon(config.Spiral)

	phaseLabel := newText("", 28, true)
	secondLabel := newText("", 22, false)
	roundLabel := newText("", 15, false)
	elapsedLabel := newText("", 13, false)

	visual := &Window{
		window:       window,
		config:       config,
		callbacks:    callbacks,
		circle:       circle,
		ribbon:       ribbon,
		phaseLabel:   phaseLabel,
		secondLabel:  secondLabel,
		roundLabel:   roundLabel,
		elapsedLabel: elapsedLabel,
		visual:       model.VisualCircle,
	}

	visual.stage = container.New(&stageLayout{visual: visual}, circle, ribbon.container, phaseLabel, secondLabel)

	visual.startButton = widget.NewButton("Start", func() { invoke(visual.callbacks.OnStart) })
	visual.pauseButton = widget.NewButton("Pause", func() { invoke(visual.callbacks.OnTogglePause) })
	visual.stopButton = widget.NewButton("Stop", func() { invoke(visual.callbacks.OnStop) })
	settingsButton := widget.NewButton("Settings", func() { invoke(visual.callbacks.OnPreferences) })

	controls := container.NewHBox(visual.startButton, visual.pauseButton, visual.stopButton, layout.NewSpacer(), settingsButton)
	footer := container.NewVBox(container.NewHBox(roundLabel, layout.NewSpacer(), elapsedLabel), controls)
	window.SetContent(container.NewStack(background, container.NewBorder(nil, footer, nil, nil, visual.stage)))
	window.Resize(fyne.NewSize(480, 560))
	window.SetCloseIntercept(func() {
		if visual.callbacks.OnClose != nil {
			visual.callbacks.OnClose()
			return
		}
		window.Hide()
	})

	visual.apply(view{})
	return visual
}

// Show brings the window to the front.
func (visual *Window) Show() {
	visual.window.Show()
	visual.window.RequestFocus()
}

// Hide hides the window.
func (visual *Window) Hide() {
	visual.window.Hide()
}

// Draw renders one frame. Safe to call from any goroutine.
func (visual *Window) Draw(output animation.Output) {
	next := viewFor(output)
	fyne.Do(func() {
		visual.apply(next)
	})
}

func invoke(handler func()) {
	if handler != nil {
		handler()
	}
}

func (visual *Window) apply(next view) {
	previous := visual.view
	visual.view = next
	visual.visual = next.visual

	if next.rendered != previous.rendered || next.visual != previous.visual {
		visual.stage.Refresh()
	}
	setText(visual.phaseLabel, next.headline)
	setText(visual.secondLabel, next.second)
	setText(visual.roundLabel, next.round)
	setText(visual.elapsedLabel, next.elapsed)

	if next.running {
		visual.startButton.Disable()
		visual.pauseButton.Enable()
		visual.stopButton.Enable()
	} else {
		visual.startButton.Enable()
		visual.pauseButton.Disable()
		visual.stopButton.Disable()
	}
	if next.paused {
		visual.pauseButton.SetText("Resume")
	} else {
		visual.pauseButton.SetText("Pause")
	}
}

func newText(value string, size float32, bold bool) *canvas.Text {
	text := canvas.NewText(value, textColor)
	text.Alignment = fyne.TextAlignCenter
	text.TextSize = size
	text.TextStyle = fyne.TextStyle{Bold: bold}
	return text
}

func setText(text *canvas.Text, value string) {
	if text.Text == value {
		return
	}
	text.Text = value
	text.Refresh()
}

// view is everything the window shows for one frame.
type view struct {
	visual   model.VisualMode
	rendered float64
	headline string
	second   string
	round    string
	elapsed  string
	running  bool
	paused   bool
}

func viewFor(output animation.Output) view {
	snapshot := output.Snapshot
	next := view{
		visual:   snapshot.Visual,
		rendered: output.Rendered,
		running:  snapshot.Running,
		paused:   snapshot.Paused,
	}
	if next.visual == "" {
		next.visual = model.VisualCircle
	}

	switch {
	case snapshot.InPhase():
		next.headline = snapshot.Phase.Label()
		next.second = fmt.Sprintf("%d", snapshot.PhaseSecond+1)
	case snapshot.CountdownLabel != "":
		next.headline = snapshot.CountdownLabel
	case snapshot.Status == sequencer.StatusComplete:
		next.headline = "Well done"
	default:
		next.headline = "Press Start"
	}
	if snapshot.Paused {
		next.headline += " (paused)"
	}

	if snapshot.TotalRounds > 0 {
		next.round = fmt.Sprintf("Round %d / %d", snapshot.Round, snapshot.TotalRounds)
		next.elapsed = fmt.Sprintf("%s / %s", formatDuration(snapshot.Elapsed), formatDuration(snapshot.Total))
	}
	return next
}
