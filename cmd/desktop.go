package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"breathpace/internal/core/pacer"
	"breathpace/internal/core/pattern"
	"breathpace/internal/core/sequencer"
	"breathpace/internal/platform"
	"breathpace/internal/storage"
	"breathpace/internal/ui/animation"
	"breathpace/internal/ui/preferences"
	"breathpace/internal/ui/tray"
	"breathpace/internal/ui/visual"
	"breathpace/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// shell wires the pacer to the desktop windows and the tray. Its methods run
// on the fyne main goroutine.
type shell struct {
	desktopApp desktop.App
	session    *pacer.Pacer
	window     *visual.Window
	prefs      *preferences.Window
	tray       *tray.Manager
	logger     zerolog.Logger
	configPath string
	settings   preferences.Settings

	pausedForPrefs bool
	trayPaused     bool
}

func runDesktop(cmd *cobra.Command, flags *cliFlags) error {
	env, err := flags.bootstrap(cmd)
	if err != nil {
		return err
	}
	defer env.closer.Close()
	log := env.logger

	activations := make(chan struct{}, 1)
	guard, err := platform.AcquireSingleInstance(appName, func() {
		select {
		case activations <- struct{}{}:
		default:
		}
	})
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			log.Info().Err(err).Msg("another instance is running")
			return nil
		}
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	table, err := env.settings.Patterns()
	if err != nil {
		log.Warn().Err(err).Msg("custom patterns ignored")
		table = pattern.DefaultTable()
	}

	session := pacer.New(pacer.Options{Patterns: table, Logger: &log})
	defer session.Close()
	startMetrics(ctx, flags.metricsAddr, session, log)

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconActive))

	s := &shell{
		session:    session,
		logger:     log,
		configPath: env.configPath,
		settings:   env.settings,
	}

	quit := func() {
		cancel()
		fyneApp.Quit()
	}
	desktopApp, hasTray := fyneApp.(desktop.App)

	callbacks := visual.Callbacks{
		OnStart:       s.start,
		OnTogglePause: s.togglePause,
		OnStop:        s.stop,
		OnPreferences: s.openPreferences,
	}
	if !hasTray {
		callbacks.OnClose = quit
	}
	s.window = visual.New(fyneApp, visual.Config{Title: appName}, callbacks)
	s.prefs = preferences.New(fyneApp, s.settings, table, s.save, s.closePreferences)

	if hasTray {
		s.desktopApp = desktopApp
		s.tray = tray.New(desktopApp, tray.Callbacks{
			OnShow:        s.window.Show,
			OnStart:       s.start,
			OnTogglePause: s.togglePause,
			OnStop:        s.stop,
			OnPreferences: s.openPreferences,
			OnQuit:        quit,
		})
		desktopApp.SetSystemTrayIcon(resources.MustIcon(resources.IconActive))
	} else {
		log.Info().Msg("system tray unsupported on this platform")
	}

	engine := animation.New(animation.DefaultConfig(), session, s.window.Draw)
	engine.Start(ctx)
	defer engine.Stop()

	events := session.Subscribe(64)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				s.handleEvent(event)
			})
		}
	}()

	go func() {
		for {
			select {
			case <-activations:
				fyne.Do(s.window.Show)
			case <-ctx.Done():
				return
			}
		}
	}()

	watcher, err := storage.NewWatcher(env.configPath, log, func(updated preferences.Settings, err error) {
		if err != nil {
			return
		}
		fyne.Do(func() {
			s.apply(updated)
		})
	})
	if err != nil {
		log.Warn().Err(err).Msg("settings hot reload disabled")
	} else {
		go watcher.Start(ctx)
		defer watcher.Stop()
	}

	s.window.Show()
	fyneApp.Run()
	return nil
}

func (s *shell) start() {
	if err := s.session.Start(s.settings.Request()); err != nil {
		s.logger.Error().Err(err).Str("pattern", s.settings.PatternName).Msg("start session")
		return
	}
	s.window.Show()
}

func (s *shell) togglePause() {
	s.session.TogglePause()
}

func (s *shell) stop() {
	s.session.Abort()
}

// openPreferences pauses a running session for as long as the window is open.
func (s *shell) openPreferences() {
	if s.session.Pause() {
		s.pausedForPrefs = true
	}
	s.prefs.UpdateSettings(s.settings)
	s.prefs.Show()
}

func (s *shell) closePreferences() {
	if !s.pausedForPrefs {
		return
	}
	s.pausedForPrefs = false
	s.session.Resume()
}

func (s *shell) save(updated preferences.Settings) {
	if err := storage.SaveSettingsFile(s.configPath, updated); err != nil {
		s.logger.Error().Err(err).Str("path", s.configPath).Msg("save settings")
	}
	s.apply(updated)
}

// apply installs new settings. A session whose configuration changed is
// reset to idle.
func (s *shell) apply(updated preferences.Settings) {
	previous := s.settings
	s.settings = updated

	table, err := updated.Patterns()
	if err != nil {
		s.logger.Warn().Err(err).Msg("custom patterns ignored")
		table = pattern.DefaultTable()
	}
	s.session.SetPatterns(table)
	s.prefs.SetCatalog(table)

	if sessionAffected(previous, updated) && s.session.Abort() {
		s.pausedForPrefs = false
		s.logger.Info().Msg("settings changed, session reset")
	}
}

func (s *shell) handleEvent(event sequencer.Event) {
	if event.Type == sequencer.EventSecondTick {
		return
	}
	if event.Type == sequencer.EventPhaseChanged && s.settings.Cue != preferences.CueOff {
		s.logger.Debug().Str("cue", string(s.settings.Cue)).Str("phase", string(event.Phase)).Msg("phase cue")
	}
	if s.tray == nil {
		return
	}

	snapshot := s.session.Snapshot()
	s.tray.SetRunning(snapshot.Running)
	s.tray.SetPaused(snapshot.Paused)
	s.tray.SetStatus(statusLine(snapshot))

	if snapshot.Paused != s.trayPaused {
		s.trayPaused = snapshot.Paused
		icon := resources.IconActive
		if snapshot.Paused {
			icon = resources.IconPaused
		}
		s.desktopApp.SetSystemTrayIcon(resources.MustIcon(icon))
	}
}

func sessionAffected(previous, updated preferences.Settings) bool {
	if previous.Request() != updated.Request() {
		return true
	}
	return !reflect.DeepEqual(previous.CustomPatterns, updated.CustomPatterns)
}

func statusLine(snapshot sequencer.Snapshot) string {
	switch {
	case snapshot.InPhase():
		return fmt.Sprintf("%s, round %d / %d", snapshot.Phase.Label(), snapshot.Round, snapshot.TotalRounds)
	case snapshot.CountdownLabel != "":
		return snapshot.CountdownLabel
	case snapshot.Status == sequencer.StatusComplete:
		return "complete"
	default:
		return "idle"
	}
}
