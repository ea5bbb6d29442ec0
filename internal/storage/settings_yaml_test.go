package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"
	"breathpace/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveThenLoadKeepsCustomPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breathpace", settingsFileName)

	settings := preferences.DefaultSettings()
	settings.CustomPatterns = []pattern.Pattern{{
		Name:   "3:3 Even",
		Ratios: []float64{1, 1},
		Phases: []pattern.PhaseName{pattern.Inhale, pattern.Exhale},
	}}
	settings.PatternName = "3:3 Even"
	settings.UnitSeconds = 5.5
	settings.Rounds = 8
	settings.Visual = model.VisualSpiral
	settings.Cue = preferences.CueBeep
	settings.Log.Level = "debug"

	require.NoError(t, SaveSettingsFile(path, settings))
	loaded, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestInvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	writeFile(t, path, `
pattern: "9:9 Nothing"
unit_seconds: -2
rounds: 0
visual: hexagon
cue: kazoo
custom_patterns:
  - name: broken
    ratios: [1, 0]
  - name: "1:1 Balance"
    ratios: [2, 2]
  - name: "1:1 Balance"
    ratios: [3, 3]
`)

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)

	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.PatternName, settings.PatternName)
	assert.Equal(t, defaults.UnitSeconds, settings.UnitSeconds)
	assert.Equal(t, defaults.Rounds, settings.Rounds)
	assert.Equal(t, model.VisualCircle, settings.Visual)
	assert.Equal(t, defaults.Cue, settings.Cue)

	require.Len(t, settings.CustomPatterns, 1)
	assert.Equal(t, []float64{2, 2}, settings.CustomPatterns[0].Ratios)
}

func TestSerpentIsSpiral(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	writeFile(t, path, "visual: serpent\n")

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.VisualSpiral, settings.Visual)
}

func TestMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	writeFile(t, path, "rounds: [unterminated\n")

	settings, err := LoadSettingsFile(path)
	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breathpace", settingsFileName)

	reloads := make(chan preferences.Settings, 4)
	watcher, err := NewWatcher(path, zerolog.Nop(), func(settings preferences.Settings, err error) {
		if err == nil {
			reloads <- settings
		}
	})
	require.NoError(t, err)
	defer watcher.Stop()
	watcher.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	settings := preferences.DefaultSettings()
	settings.Rounds = 3
	require.NoError(t, SaveSettingsFile(path, settings))

	select {
	case reloaded := <-reloads:
		assert.Equal(t, 3, reloaded.Rounds)
	case <-time.After(5 * time.Second):
		t.Fatal("settings were not reloaded")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, settingsFileName)

	watcher, err := NewWatcher(path, zerolog.Nop(), nil)
	require.NoError(t, err)
	defer watcher.Stop()

	other := filepath.Join(dir, "other.yaml")
	assert.False(t, watcher.relevant(fsnotify.Event{Name: other, Op: fsnotify.Write}))
	assert.True(t, watcher.relevant(fsnotify.Event{Name: path, Op: fsnotify.Create}))
}
