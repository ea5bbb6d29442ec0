package preferences

import (
	"fmt"
	"strconv"
	"strings"

	"breathpace/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

var visualLabels = map[model.VisualMode]string{
	model.VisualCircle: "Circle",
	model.VisualSpiral: "Serpent",
}

var cueLabels = map[CueMode]string{
	CueVoiceMale:   "Voice (male)",
	CueVoiceFemale: "Voice (female)",
	CueBeep:        "Beep",
	CueOff:         "Off",
}

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	onClose     func()
	pattern     *widget.Select
	description *widget.Label
	unit        *widget.Entry
	rounds      *widget.Entry
	visual      *widget.RadioGroup
	cue         *widget.Select
	catalog     PatternCatalog
}

// PatternCatalog lists selectable patterns.
type PatternCatalog interface {
	Names() []string
	Describe(name string) string
}

// New creates a preferences window. onClose runs when the window is
// dismissed, saved or not.
func New(app fyne.App, settings Settings, catalog PatternCatalog, onSave func(Settings), onClose func()) *Window {
	window := app.NewWindow("Breathpace Settings")

	description := widget.NewLabel("")
	description.Wrapping = fyne.TextWrapWord

	prefs := &Window{
		window:      window,
		settings:    settings,
		onSave:      onSave,
		onClose:     onClose,
		description: description,
		catalog:     catalog,
	}

	prefs.pattern = widget.NewSelect(catalog.Names(), func(name string) {
		prefs.description.SetText(prefs.catalog.Describe(name))
	})
	prefs.unit = widget.NewEntry()
	prefs.rounds = widget.NewEntry()
	prefs.visual = widget.NewRadioGroup([]string{visualLabels[model.VisualCircle], visualLabels[model.VisualSpiral]}, nil)
	prefs.visual.Horizontal = true

	cueOptions := make([]string, 0, len(CueModes))
	for _, mode := range CueModes {
		cueOptions = append(cueOptions, cueLabels[mode])
	}
	prefs.cue = widget.NewSelect(cueOptions, nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Pattern"),
		prefs.pattern,
		description,
		container.NewHBox(widget.NewLabel("Unit"), prefs.unit, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Rounds"), prefs.rounds),
		widget.NewLabel("Visual"),
		prefs.visual,
		widget.NewLabel("Cues"),
		prefs.cue,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", prefs.close)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 460))
	window.SetCloseIntercept(prefs.close)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.pattern.Options = prefs.catalog.Names()
	prefs.pattern.SetSelected(settings.PatternName)
	prefs.description.SetText(prefs.catalog.Describe(settings.PatternName))
	prefs.unit.SetText(strconv.FormatFloat(settings.UnitSeconds, 'f', -1, 64))
	prefs.rounds.SetText(fmt.Sprintf("%d", settings.Rounds))
	prefs.visual.SetSelected(visualLabels[model.ParseVisualMode(string(settings.Visual))])
	prefs.cue.SetSelected(cueLabels[settings.Cue])
}

// SetCatalog replaces the selectable patterns, e.g. after custom patterns
// were reloaded from disk.
func (prefs *Window) SetCatalog(catalog PatternCatalog) {
	prefs.catalog = catalog
	prefs.pattern.Options = catalog.Names()
	prefs.pattern.Refresh()
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if prefs.pattern.Selected != "" {
		settings.PatternName = prefs.pattern.Selected
	}
	if unit, ok := parsePositiveFloat(prefs.unit.Text); ok {
		settings.UnitSeconds = unit
	}
	if rounds, ok := parsePositiveInt(prefs.rounds.Text); ok {
		settings.Rounds = rounds
	}
	for mode, label := range visualLabels {
		if prefs.visual.Selected == label {
			settings.Visual = mode
		}
	}
	for mode, label := range cueLabels {
		if prefs.cue.Selected == label {
			settings.Cue = mode
		}
	}

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.close()
}

func (prefs *Window) close() {
	prefs.window.Hide()
	if prefs.onClose != nil {
		prefs.onClose()
	}
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func parsePositiveFloat(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || !(parsed > 0) || parsed > 3600 {
		return 0, false
	}
	return parsed, true
}
