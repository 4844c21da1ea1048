// Package config provides configuration management for winup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"winup/internal/winget"
)

const (
	appConfigDir  = ".config/winup"
	appConfigFile = "config.yaml"
	historyFile   = "history.db"

	// defaultKeepRuns is how many recorded runs the history store retains
	defaultKeepRuns = 50
)

// Config is the optional user configuration stored in ~/.config/winup/.
// Every field has a working default; a missing file is not an error.
type Config struct {
	// WingetPath overrides the winget binary looked up on PATH
	WingetPath string `yaml:"winget_path,omitempty"`
	// Patterns overrides the output substrings used to classify upgrade
	// results; they drift between winget releases
	Patterns winget.Patterns `yaml:"patterns,omitempty"`
	// HistoryPath overrides where the run history database lives
	HistoryPath string `yaml:"history_path,omitempty"`
	// KeepRuns is how many runs to retain in history (0 means default)
	KeepRuns int `yaml:"keep_runs,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{KeepRuns: defaultKeepRuns}
}

// Path returns the location of the config file under the user's home.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, appConfigDir, appConfigFile), nil
}

// Load reads the configuration from its default location. A missing
// file yields the defaults without error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFile(path)
}

// LoadFile reads the configuration from the given path. A missing file
// yields the defaults without error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user home dir, intentional
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.KeepRuns <= 0 {
		cfg.KeepRuns = defaultKeepRuns
	}

	return cfg, nil
}

// Save writes the configuration to its default location.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to the given path, creating parent
// directories as needed.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Add a header comment
	content := fmt.Sprintf("# winup configuration\n# All fields are optional; omitted fields use built-in defaults\n\n%s", string(data))

	// Use 0600 permissions to restrict access to owner only
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolveHistoryPath returns the run history database location, applying
// the default under the config directory when unset.
func (c *Config) ResolveHistoryPath() (string, error) {
	if c.HistoryPath != "" {
		return c.HistoryPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, appConfigDir, historyFile), nil
}
