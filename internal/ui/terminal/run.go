package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"breathpace/internal/core/sequencer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the session was stopped before completion.
var ErrAborted = errors.New("session aborted")

// IsInteractive reports whether file is attached to a terminal.
func IsInteractive(file *os.File) bool {
	if file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// Run drives a session that has already been started on controller. It uses
// the interactive view when stdout is a terminal and plain lines otherwise.
func Run(ctx context.Context, controller Controller, events <-chan sequencer.Event, options Options) error {
	if IsInteractive(os.Stdout) && IsInteractive(os.Stdin) {
		return RunInteractive(ctx, controller, events, options)
	}
	return RunPlain(ctx, controller, events, os.Stdout, options)
}

// RunInteractive runs the bubbletea program until the session ends.
func RunInteractive(ctx context.Context, controller Controller, events <-chan sequencer.Event, options Options) error {
	program := tea.NewProgram(NewModel(controller, events, options), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		controller.Abort()
		if errors.Is(err, tea.ErrProgramKilled) {
			return ErrAborted
		}
		return fmt.Errorf("run terminal ui: %w", err)
	}
	if model, ok := final.(Model); ok && model.Aborted() {
		return ErrAborted
	}
	return nil
}

// RunPlain prints one line per session event. It aborts the session when
// ctx is cancelled.
func RunPlain(ctx context.Context, controller Controller, events <-chan sequencer.Event, out io.Writer, options Options) error {
	for {
		select {
		case <-ctx.Done():
			controller.Abort()
			return ErrAborted
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if line := describeEvent(event); line != "" {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return fmt.Errorf("write session line: %w", err)
				}
			}
			switch event.Type {
			case sequencer.EventPhaseChanged:
				if options.Bell != nil {
					options.Bell()
				}
			case sequencer.EventSessionCompleted:
				return nil
			case sequencer.EventSessionAborted:
				return ErrAborted
			}
		}
	}
}

func describeEvent(event sequencer.Event) string {
	switch event.Type {
	case sequencer.EventSessionStarted:
		return fmt.Sprintf("Starting %d rounds", event.TotalRounds)
	case sequencer.EventCountdownStep:
		return event.CountdownLabel
	case sequencer.EventPhaseChanged:
		return fmt.Sprintf("[%d/%d] %s (%s)", event.Round, event.TotalRounds, event.Phase.Label(), event.PhaseDuration)
	case sequencer.EventPaused:
		return "Paused"
	case sequencer.EventResumed:
		return "Resumed"
	case sequencer.EventSessionCompleted:
		return fmt.Sprintf("Well done, %d rounds complete", event.RoundsCompleted)
	case sequencer.EventSessionAborted:
		return "Stopped"
	}
	return ""
}
