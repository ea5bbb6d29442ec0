package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix for logging environment overrides.
const EnvPrefix = "BREATHPACE_LOG"

// Config describes where and how logs are written.
type Config struct {
	Level    string `envconfig:"LEVEL" yaml:"level"`
	Format   string `envconfig:"FORMAT" yaml:"format"`
	Output   string `envconfig:"OUTPUT" yaml:"output"`
	FilePath string `envconfig:"FILE" yaml:"file"`
}

// DefaultConfig logs warnings and above to stderr as console text.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: "stderr",
	}
}

// FromEnv overlays BREATHPACE_LOG_* variables on base.
func FromEnv(base Config) (Config, error) {
	config := base
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return base, fmt.Errorf("process logging environment: %w", err)
	}
	return config, nil
}

// New builds a logger from config. The returned closer releases a log file
// and is never nil.
func New(config Config) (zerolog.Logger, io.Closer, error) {
	level := zerolog.WarnLevel
	if config.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
		level = parsed
	}

	var output io.Writer
	var closer io.Closer = nopCloser{}
	switch strings.ToLower(config.Output) {
	case "stdout":
		output = os.Stdout
	case "file":
		if config.FilePath == "" {
			return zerolog.Nop(), closer, fmt.Errorf("log output is file but no path is set")
		}
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file %q: %w", config.FilePath, err)
		}
		output = file
		closer = file
	default:
		output = os.Stderr
	}

	return build(output, config.Format, level), closer, nil
}

// NewWriter builds a logger writing to output. Used by tests and the
// terminal view, which must keep stderr clean.
func NewWriter(output io.Writer, format string, level zerolog.Level) zerolog.Logger {
	return build(output, format, level)
}

func build(output io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if strings.ToLower(format) == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
