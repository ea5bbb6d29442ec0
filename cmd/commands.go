package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"breathpace/internal/core/model"
	"breathpace/internal/core/pacer"
	"breathpace/internal/logger"
	"breathpace/internal/metrics"
	"breathpace/internal/storage"
	"breathpace/internal/ui/preferences"
	"breathpace/internal/ui/terminal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cliFlags holds the values shared by every command.
type cliFlags struct {
	configPath  string
	pattern     string
	unit        float64
	rounds      int
	visual      string
	cue         string
	metricsAddr string
	logLevel    string
}

// environment is what a command needs after flags, settings and logging
// have been resolved.
type environment struct {
	settings   preferences.Settings
	configPath string
	logger     zerolog.Logger
	closer     io.Closer
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:           "breathpace",
		Short:         "Guided breathing sessions on the desktop or in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(cmd, flags)
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVar(&flags.configPath, "config", "", "settings file (default: user config dir)")
	persistent.StringVarP(&flags.pattern, "pattern", "p", "", "breathing pattern name")
	persistent.Float64VarP(&flags.unit, "unit", "u", 0, "seconds per ratio unit")
	persistent.IntVarP(&flags.rounds, "rounds", "r", 0, "number of rounds")
	persistent.StringVar(&flags.visual, "visual", "", "visual mode: circle or serpent")
	persistent.StringVar(&flags.cue, "cue", "", "cue mode: voice_male, voice_female, beep or off")
	persistent.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	persistent.StringVar(&flags.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")

	root.AddCommand(newRunCommand(flags), newPatternsCommand(flags))
	return root
}

func newRunCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one session in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd, flags)
		},
	}
}

func newPatternsCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the available breathing patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer env.closer.Close()
			return listPatterns(cmd.OutOrStdout(), env.settings)
		},
	}
}

func runTerminal(cmd *cobra.Command, flags *cliFlags) error {
	env, err := flags.bootstrap(cmd)
	if err != nil {
		return err
	}
	defer env.closer.Close()

	table, err := env.settings.Patterns()
	if err != nil {
		return fmt.Errorf("build pattern table: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := pacer.New(pacer.Options{Patterns: table, Logger: &env.logger})
	defer session.Close()

	events := session.Subscribe(64)
	startMetrics(ctx, flags.metricsAddr, session, env.logger)

	if err := session.Start(env.settings.Request()); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	options := terminal.Options{Title: fmt.Sprintf("%s · %s", appName, env.settings.PatternName)}
	if env.settings.Cue == preferences.CueBeep {
		options.Bell = func() {
			fmt.Fprint(os.Stderr, "\a")
		}
	}

	err = terminal.Run(ctx, session, events, options)
	if errors.Is(err, terminal.ErrAborted) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Session stopped.")
		return nil
	}
	return err
}

func listPatterns(out io.Writer, settings preferences.Settings) error {
	table, err := settings.Patterns()
	if err != nil {
		return fmt.Errorf("build pattern table: %w", err)
	}
	for _, name := range table.Names() {
		marker := " "
		if name == settings.PatternName {
			marker = "*"
		}
		current, err := table.Lookup(name)
		if err != nil {
			return err
		}
		ratios := make([]string, len(current.Ratios))
		for index, ratio := range current.Ratios {
			ratios[index] = fmt.Sprintf("%g", ratio)
		}
		if _, err := fmt.Fprintf(out, "%s %-18s %-12s %s\n", marker, name, strings.Join(ratios, ":"), current.Description); err != nil {
			return err
		}
	}
	return nil
}

// bootstrap loads settings, applies flag overrides and builds the logger.
func (flags *cliFlags) bootstrap(cmd *cobra.Command) (*environment, error) {
	configPath := flags.configPath
	if configPath == "" {
		resolved, err := storage.SettingsPath(appName)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}

	settings, loadErr := storage.LoadSettingsFile(configPath)
	flags.apply(cmd, &settings)

	logConfig, envErr := logger.FromEnv(settings.Log)
	if flags.logLevel != "" {
		logConfig.Level = flags.logLevel
	}
	log, closer, err := logger.New(logConfig)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", configPath).Msg("using default settings")
	}
	if envErr != nil {
		log.Warn().Err(envErr).Msg("ignoring logging environment")
	}
	log.Debug().
		Str("path", configPath).
		Str("pattern", settings.PatternName).
		Float64("unit_seconds", settings.UnitSeconds).
		Int("rounds", settings.Rounds).
		Msg("settings resolved")

	return &environment{
		settings:   settings,
		configPath: configPath,
		logger:     log,
		closer:     closer,
	}, nil
}

// apply overlays the flags the user actually passed.
func (flags *cliFlags) apply(cmd *cobra.Command, settings *preferences.Settings) {
	changed := cmd.Flags().Changed
	if changed("pattern") && flags.pattern != "" {
		settings.PatternName = flags.pattern
	}
	if changed("unit") {
		settings.UnitSeconds = flags.unit
	}
	if changed("rounds") {
		settings.Rounds = flags.rounds
	}
	if changed("visual") {
		settings.Visual = model.ParseVisualMode(strings.ToLower(flags.visual))
	}
	if changed("cue") {
		if mode := preferences.CueMode(strings.ToLower(flags.cue)); mode.Valid() {
			settings.Cue = mode
		}
	}
}

func startMetrics(ctx context.Context, addr string, session *pacer.Pacer, log zerolog.Logger) {
	if addr == "" {
		return
	}
	collector := metrics.New(session)
	go collector.Run(ctx, session.Subscribe(256))
	go func() {
		if err := collector.Serve(ctx, addr, log); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}
