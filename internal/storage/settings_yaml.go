package storage

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"
	"breathpace/internal/logger"
	"breathpace/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlPattern struct {
	Name        string    `yaml:"name"`
	Ratios      []float64 `yaml:"ratios"`
	Phases      []string  `yaml:"phases,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

type yamlSettings struct {
	Pattern        string        `yaml:"pattern"`
	UnitSeconds    float64       `yaml:"unit_seconds"`
	Rounds         int           `yaml:"rounds"`
	Visual         string        `yaml:"visual"`
	Cue            string        `yaml:"cue"`
	CustomPatterns []yamlPattern `yaml:"custom_patterns,omitempty"`
	Log            logger.Config `yaml:"log"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// LoadSettingsFile reads preferences from configPath. Missing files yield
// defaults; invalid values fall back to their defaults.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettingsFile writes preferences to configPath.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		Pattern:     settings.PatternName,
		UnitSeconds: settings.UnitSeconds,
		Rounds:      settings.Rounds,
		Visual:      string(settings.Visual),
		Cue:         string(settings.Cue),
		Log:         settings.Log,
	}
	for _, custom := range settings.CustomPatterns {
		entry := yamlPattern{
			Name:        custom.Name,
			Ratios:      custom.Ratios,
			Description: custom.Description,
		}
		for _, phase := range custom.Phases {
			entry.Phases = append(entry.Phases, string(phase))
		}
		fileData.CustomPatterns = append(fileData.CustomPatterns, entry)
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.UnitSeconds > 0 && !math.IsInf(fileData.UnitSeconds, 0) {
		settings.UnitSeconds = fileData.UnitSeconds
	}
	if fileData.Rounds > 0 {
		settings.Rounds = fileData.Rounds
	}
	if fileData.Visual != "" {
		settings.Visual = model.ParseVisualMode(fileData.Visual)
	}
	if cue := preferences.CueMode(fileData.Cue); cue.Valid() {
		settings.Cue = cue
	}

	for _, entry := range fileData.CustomPatterns {
		custom := pattern.Pattern{
			Name:        entry.Name,
			Ratios:      entry.Ratios,
			Description: entry.Description,
		}
		for _, phase := range entry.Phases {
			custom.Phases = append(custom.Phases, pattern.PhaseName(phase))
		}
		if custom.Validate() != nil {
			continue
		}
		candidate := append(append([]pattern.Pattern(nil), settings.CustomPatterns...), custom)
		if _, err := pattern.DefaultTable().Merge(candidate...); err != nil {
			continue
		}
		settings.CustomPatterns = candidate
	}

	if fileData.Pattern != "" {
		if table, err := settings.Patterns(); err == nil {
			if _, err := table.Lookup(fileData.Pattern); err == nil {
				settings.PatternName = fileData.Pattern
			}
		}
	}

	if fileData.Log.Level != "" {
		settings.Log.Level = fileData.Log.Level
	}
	if fileData.Log.Format != "" {
		settings.Log.Format = fileData.Log.Format
	}
	if fileData.Log.Output != "" {
		settings.Log.Output = fileData.Log.Output
	}
	settings.Log.FilePath = fileData.Log.FilePath
}
