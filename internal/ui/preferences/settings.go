package preferences

import (
	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"
	"breathpace/internal/logger"
)

// CueMode selects how phase changes are announced.
type CueMode string

const (
	CueVoiceMale   CueMode = "voice_male"
	CueVoiceFemale CueMode = "voice_female"
	CueBeep        CueMode = "beep"
	CueOff         CueMode = "off"
)

// CueModes lists the selectable cue modes in display order.
var CueModes = []CueMode{CueVoiceMale, CueVoiceFemale, CueBeep, CueOff}

// Valid reports whether mode is known.
func (mode CueMode) Valid() bool {
	for _, known := range CueModes {
		if mode == known {
			return true
		}
	}
	return false
}

// Settings defines editable user preferences.
type Settings struct {
	PatternName string
	UnitSeconds float64
	Rounds      int
	Visual      model.VisualMode
	Cue         CueMode

	CustomPatterns []pattern.Pattern
	Log            logger.Config
}

// DefaultSettings returns default settings for a new install.
func DefaultSettings() Settings {
	return Settings{
		PatternName: pattern.DefaultName,
		UnitSeconds: 4,
		Rounds:      20,
		Visual:      model.VisualCircle,
		Cue:         CueVoiceMale,
		Log:         logger.DefaultConfig(),
	}
}

// Request converts settings to a session request.
func (settings Settings) Request() model.Request {
	return model.Request{
		PatternName: settings.PatternName,
		UnitSeconds: settings.UnitSeconds,
		TotalRounds: settings.Rounds,
		Visual:      settings.Visual,
	}
}

// Patterns returns the built-in presets merged with the custom patterns.
func (settings Settings) Patterns() (*pattern.Table, error) {
	return pattern.DefaultTable().Merge(settings.CustomPatterns...)
}
