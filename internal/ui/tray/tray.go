package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const menuTitle = "Breathpace"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnStart       func()
	OnTogglePause func()
	OnStop        func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	showItem    *fyne.MenuItem
	startItem   *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	prefsItem   *fyne.MenuItem
	quitItem    *fyne.MenuItem
	callbacks   Callbacks
	paused      bool
	running     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "idle",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.showItem = fyne.NewMenuItem("Show", func() { invoke(manager.callbacks.OnShow) })
	manager.startItem = fyne.NewMenuItem("Start session", func() { invoke(manager.callbacks.OnStart) })
	manager.pauseItem = fyne.NewMenuItem("Pause", func() { invoke(manager.callbacks.OnTogglePause) })
	manager.stopItem = fyne.NewMenuItem("Stop", func() { invoke(manager.callbacks.OnStop) })
	manager.prefsItem = fyne.NewMenuItem("Preferences", func() { invoke(manager.callbacks.OnPreferences) })
	manager.quitItem = fyne.NewMenuItem("Quit", func() { invoke(manager.callbacks.OnQuit) })
	manager.quitItem.IsQuit = true

	manager.SetRunning(false)
	return manager
}

// SetStatus updates the status label, e.g. "Breathe in, round 2 / 20".
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.refreshMenu()
}

// SetPaused updates pause state.
func (manager *Manager) SetPaused(paused bool) {
	if paused == manager.paused {
		return
	}
	manager.paused = paused
	manager.refreshMenu()
}

// SetRunning toggles the session related menu items.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	if !running {
		manager.paused = false
	}
	manager.refreshMenu()
}

// Menu returns the menu as currently shown.
func (manager *Manager) Menu() *fyne.Menu {
	status := manager.statusLabel
	if manager.paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)

	if manager.paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
	manager.startItem.Disabled = manager.running
	manager.pauseItem.Disabled = !manager.running
	manager.stopItem.Disabled = !manager.running

	return fyne.NewMenu(menuTitle,
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.showItem,
		manager.startItem,
		manager.pauseItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		manager.prefsItem,
		manager.quitItem,
	)
}

func (manager *Manager) refreshMenu() {
	menu := manager.Menu()
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(menu)
	}
}

func invoke(handler func()) {
	if handler != nil {
		handler()
	}
}
