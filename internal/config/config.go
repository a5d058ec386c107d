// Package config loads the user's on-disk defaults. Every field is optional;
// command-line flags take precedence over anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors ~/.config/ytx/config.toml. Empty fields mean "not set" and
// leave the built-in default in effect.
type Config struct {
	DefaultLang   string `toml:"default_lang"`
	DefaultFormat string `toml:"default_format"`
	DefaultModel  string `toml:"default_model"`
	WhisperModel  string `toml:"whisper_model"`
}

// Path returns the standard config file location for the current user.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, "ytx", "config.toml"), nil
}

// Load reads the config file at path. A missing file is not an error; it
// yields the zero config. A file that exists but does not parse is an error,
// so a typo does not silently fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
