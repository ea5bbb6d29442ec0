package terminal

import (
	"fmt"
	"strings"
	"time"

	"breathpace/internal/core/sequencer"
	"breathpace/internal/ui/animation"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the part of the pacer the terminal front end drives.
type Controller interface {
	animation.FrameSource
	TogglePause() bool
	Abort() bool
}

// Options configures the terminal front end.
type Options struct {
	Title         string
	FrameInterval time.Duration
	// Bell rings on every phase change when set.
	Bell func()
}

type frameMsg time.Time

type eventMsg sequencer.Event

type eventsClosedMsg struct{}

type styles struct {
	title    lipgloss.Style
	headline lipgloss.Style
	second   lipgloss.Style
	muted    lipgloss.Style
	help     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0F7F92")),
		headline: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#25879E")).PaddingTop(1),
		second:   lipgloss.NewStyle().Foreground(lipgloss.Color("#123A42")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).PaddingTop(1),
	}
}

// Model is the bubbletea model for a running session.
type Model struct {
	controller Controller
	engine     *animation.Engine
	events     <-chan sequencer.Event
	options    Options
	styles     styles
	bar        progress.Model

	output  animation.Output
	done    bool
	aborted bool
}

// NewModel creates the session model. events should come from the pacer's
// Subscribe.
func NewModel(controller Controller, events <-chan sequencer.Event, options Options) Model {
	if options.Title == "" {
		options.Title = "Breathpace"
	}
	if options.FrameInterval <= 0 {
		options.FrameInterval = 50 * time.Millisecond
	}
	config := animation.DefaultConfig()
	config.FrameInterval = options.FrameInterval

	return Model{
		controller: controller,
		engine:     animation.New(config, controller, nil),
		events:     events,
		options:    options,
		styles:     newStyles(),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "space", "p":
			m.controller.TogglePause()
			m.output = m.engine.Step()
			return m, nil
		case "q", "esc", "ctrl+c":
			m.controller.Abort()
			m.aborted = true
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil

	case frameMsg:
		if m.done {
			return m, nil
		}
		m.output = m.engine.Step()
		return m, m.tick()

	case eventMsg:
		event := sequencer.Event(msg)
		switch event.Type {
		case sequencer.EventPhaseChanged:
			if m.options.Bell != nil {
				m.options.Bell()
			}
		case sequencer.EventSessionCompleted, sequencer.EventSessionAborted:
			m.output = m.engine.Step()
			m.aborted = event.Type == sequencer.EventSessionAborted
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	snapshot := m.output.Snapshot
	var builder strings.Builder

	builder.WriteString(m.styles.title.Render(m.options.Title))
	if snapshot.Pattern != "" {
		builder.WriteString(m.styles.muted.Render("  " + snapshot.Pattern))
	}
	builder.WriteString("\n")

	builder.WriteString(m.styles.headline.Render(Headline(snapshot)))
	if snapshot.InPhase() {
		builder.WriteString(m.styles.second.Render(fmt.Sprintf("  %d", snapshot.PhaseSecond+1)))
	}
	builder.WriteString("\n\n")
	builder.WriteString(m.bar.ViewAs(m.output.Rendered))
	builder.WriteString("\n")

	if snapshot.TotalRounds > 0 {
		builder.WriteString(m.styles.muted.Render(fmt.Sprintf("Round %d / %d   %s / %s",
			snapshot.Round, snapshot.TotalRounds,
			formatDuration(snapshot.Elapsed), formatDuration(snapshot.Total))))
		builder.WriteString("\n")
	}

	if m.done {
		return builder.String()
	}
	builder.WriteString(m.styles.help.Render("space pause/resume • q quit"))
	builder.WriteString("\n")
	return builder.String()
}

// Aborted reports whether the session ended early.
func (m Model) Aborted() bool {
	return m.aborted
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.options.FrameInterval, func(at time.Time) tea.Msg {
		return frameMsg(at)
	})
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

// Headline returns the main line shown for snapshot.
func Headline(snapshot sequencer.Snapshot) string {
	var headline string
	switch {
	case snapshot.InPhase():
		headline = snapshot.Phase.Label()
	case snapshot.CountdownLabel != "":
		headline = snapshot.CountdownLabel
	case snapshot.Status == sequencer.StatusComplete:
		headline = "Well done"
	default:
		headline = "Ready when you are"
	}
	if snapshot.Paused {
		headline += " (paused)"
	}
	return headline
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
