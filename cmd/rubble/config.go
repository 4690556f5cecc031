package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds settings from the configuration file. Command-line flags
// override them.
type Config struct {
	Prompt          string `yaml:"prompt"`
	ContinuePrompt  string `yaml:"continue_prompt"`
	LogLevel        string `yaml:"log_level"`
	NoColor         bool   `yaml:"no_color"`
	HistoryFile     string `yaml:"history_file"`
	DebugLoading    bool   `yaml:"debug_loading"`
	DebugTimeFormat string `yaml:"debug_time_format"`
}

// DefaultConfig returns the settings used when there is no configuration
// file.
func DefaultConfig() Config {
	return Config{
		Prompt:         "rubble> ",
		ContinuePrompt: "rubble* ",
		HistoryFile:    ".rubble_history",
	}
}

// defaultConfigPath returns $HOME/.rubble.yaml, or the empty string if there
// is no home directory.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rubble.yaml")
}

// LoadConfig reads a configuration file over the defaults. A missing file
// is not an error unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "couldn't read config")
	}
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "couldn't parse config %s", path)
	}
	return cfg, nil
}

// historyPath resolves the history file relative to the home directory.
func (c Config) historyPath() string {
	if c.HistoryFile == "" || filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, c.HistoryFile)
}
