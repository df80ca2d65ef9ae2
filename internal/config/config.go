package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Directory and file names of the workspace configuration.
const (
	DirName  = ".elemcat"
	FileName = "config.yaml"
)

// EnvDBPath overrides the configured database path when set.
const EnvDBPath = "ELEMCAT_DB"

// Defaults applied to missing or invalid fields.
const (
	DefaultLogMode           = "quiet"
	DefaultReconcileWorkers  = 4
	DefaultRequiredApprovals = 3
	MaxRequiredApprovals     = 3
)

// Config represents the elemcat workspace configuration.
type Config struct {
	DBPath            string `yaml:"db_path,omitempty"`
	LogMode           string `yaml:"log_mode,omitempty"`           // dev, prod, quiet, off
	ReconcileWorkers  int    `yaml:"reconcile_workers,omitempty"`  // parallel renders in a sweep
	RequiredApprovals int    `yaml:"required_approvals,omitempty"` // approvals before a version activates
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, DirName, FileName)
}

// LoadConfig reads .elemcat/config.yaml from the specified directory.
// A missing file yields the defaults. The ELEMCAT_DB environment variable
// overrides db_path.
func LoadConfig(dir string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(Path(dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if env := os.Getenv(EnvDBPath); env != "" {
		cfg.DBPath = env
	}
	cfg.applyDefaults()
	return cfg, nil
}

// SaveConfig writes config.yaml to directory
func SaveConfig(dir string, cfg *Config) error {
	configDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultDBPath returns the default database path (~/.elemcat/elemcat.db).
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName, "elemcat.db"), nil
}

func (c *Config) applyDefaults() {
	if c.LogMode == "" {
		c.LogMode = DefaultLogMode
	}
	if c.ReconcileWorkers < 1 {
		c.ReconcileWorkers = DefaultReconcileWorkers
	}
	if c.RequiredApprovals < 1 {
		c.RequiredApprovals = DefaultRequiredApprovals
	}
	if c.RequiredApprovals > MaxRequiredApprovals {
		c.RequiredApprovals = MaxRequiredApprovals
	}
}
