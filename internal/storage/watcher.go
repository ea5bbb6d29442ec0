package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"breathpace/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads the settings file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onChange func(preferences.Settings, error)
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for configPath. The parent directory is
// watched so editors that replace the file are still seen.
func NewWatcher(configPath string, logger zerolog.Logger, onChange func(preferences.Settings, error)) (*Watcher, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(configPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}
	return &Watcher{
		path:     filepath.Clean(configPath),
		debounce: DefaultDebounce,
		watcher:  fsWatcher,
		onChange: onChange,
		logger:   logger.With().Str("component", "settings_watcher").Logger(),
	}, nil
}

// Start delivers reloads until ctx is cancelled. Run it in a goroutine.
func (watcher *Watcher) Start(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.watcher.Events:
			if !ok {
				return
			}
			if !watcher.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watcher.debounce)
			} else {
				timer.Reset(watcher.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			settings, err := LoadSettingsFile(watcher.path)
			if err != nil {
				watcher.logger.Warn().Err(err).Str("path", watcher.path).Msg("settings reload failed")
			} else {
				watcher.logger.Info().Str("path", watcher.path).Msg("settings reloaded")
			}
			if watcher.onChange != nil {
				watcher.onChange(settings, err)
			}

		case err, ok := <-watcher.watcher.Errors:
			if !ok {
				return
			}
			watcher.logger.Warn().Err(err).Msg("settings watcher error")

		case <-ctx.Done():
			return
		}
	}
}

// Stop releases the underlying watcher. Safe to call multiple times.
func (watcher *Watcher) Stop() error {
	return watcher.watcher.Close()
}

func (watcher *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != watcher.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
