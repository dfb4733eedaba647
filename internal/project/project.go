// Package project reads and writes the JSON files describing a mamba
// application (config/application.json and config/database.json) and locates
// the project root from any directory inside it.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigDir is the directory holding the project configuration files.
	ConfigDir = "config"
	// MetadataFile marks a directory as a mamba application root.
	MetadataFile = "application.json"
	// DatabaseFile holds the database configuration.
	DatabaseFile = "database.json"
)

var (
	ErrNotInProject    = errors.New("not inside a mamba application")
	ErrInvalidMetadata = errors.New("invalid application metadata")
)

// Metadata represents the config/application.json file
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
	Port        int    `json:"port"`
	LogFile     string `json:"logfile,omitempty"`
}

// LoadMetadata reads and validates application metadata from path
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse application metadata JSON: %w", err)
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	return &meta, nil
}

// SaveMetadata writes application metadata to path
func SaveMetadata(path string, meta *Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal application metadata: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks if the metadata is usable
func (m *Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidMetadata)
	}
	return nil
}

// DatabaseConfig represents the config/database.json file
type DatabaseConfig struct {
	URI               string `json:"uri"`
	MinThreads        int    `json:"min_threads"`
	MaxThreads        int    `json:"max_threads"`
	AutoAdjustPool    bool   `json:"auto_adjust_pool"`
	DropTable         bool   `json:"drop_table"`
	CreateIfNotExists bool   `json:"create_if_not_exists"`
}

// DefaultDatabaseConfig returns the configuration a fresh project starts
// with: a sqlite database under db/ and the stock pool sizes.
func DefaultDatabaseConfig(name string) *DatabaseConfig {
	return &DatabaseConfig{
		URI:               "sqlite:db/" + name + ".db",
		MinThreads:        5,
		MaxThreads:        20,
		CreateIfNotExists: true,
	}
}

// LoadDatabaseConfig reads the database configuration from path
func LoadDatabaseConfig(path string) (*DatabaseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database configuration: %w", err)
	}

	var cfg DatabaseConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse database configuration JSON: %w", err)
	}

	return &cfg, nil
}

// SaveDatabaseConfig writes the database configuration to path
func SaveDatabaseConfig(path string, cfg *DatabaseConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal database configuration: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// MetadataPath returns the application metadata path under root.
func MetadataPath(root string) string {
	return filepath.Join(root, ConfigDir, MetadataFile)
}

// DatabasePath returns the database configuration path under root.
func DatabasePath(root string) string {
	return filepath.Join(root, ConfigDir, DatabaseFile)
}

// FindRoot walks up the directory tree from dir looking for the
// config/application.json marker and returns the directory holding it.
func FindRoot(dir string) (string, error) {
	for {
		marker := filepath.Join(dir, ConfigDir, MetadataFile)
		if _, err := os.Stat(marker); err == nil {
			return dir, nil
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the root directory
			break
		}
		dir = parent
	}

	return "", ErrNotInProject
}

// Root locates the project root starting at the current working directory.
func Root() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return FindRoot(cwd)
}
