// Package config reads and writes the per-user mamba-admin configuration
// kept in ~/.mamba-admin/config.toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// User holds the identity stamped into generated sources and package
// markers when the command line does not override it.
type User struct {
	Author string `toml:"author,omitempty"`
	Email  string `toml:"email,omitempty"`
}

// Packages holds package handling preferences.
type Packages struct {
	Store string `toml:"store,omitempty"` // overrides the per-user install store
}

type Config struct {
	User     User     `toml:"user,omitempty"`
	Packages Packages `toml:"packages,omitempty"`
}

// Dir returns the mamba-admin config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mamba-admin"), nil
}

// Path returns the full path to config.toml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration from ~/.mamba-admin/config.toml
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Return empty config if file doesn't exist
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Save writes the configuration to ~/.mamba-admin/config.toml
func Save(config Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
