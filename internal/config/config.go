// Package config resolves runtime settings for the guardvault binaries.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults (LoadDefaults)
//  2. an optional JSON file named by -c or -config
//  3. command-line flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Hussein-Mazeh/guardvault/internal/session"
	"github.com/Hussein-Mazeh/guardvault/store"
)

// Config holds runtime settings shared by the CLI and the GUI.
//
// Units: every interval is a time.Duration.
type Config struct {
	VaultDir          string
	Backend           store.Backend
	InactivityTimeout time.Duration
	PollInterval      time.Duration
	RefreshInterval   time.Duration
	MinPasswordScore  int
	LogLevel          string
}

// DefaultVaultDir returns ~/.guardvault, or ./.guardvault when the home
// directory cannot be resolved.
func DefaultVaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".guardvault"
	}
	return filepath.Join(home, ".guardvault")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.VaultDir = DefaultVaultDir()
	c.Backend = store.BackendFile
	c.InactivityTimeout = session.DefaultTimeout
	c.PollInterval = session.DefaultPollInterval
	c.RefreshInterval = time.Second
	c.MinPasswordScore = 0
	c.LogLevel = "warn"
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.VaultDir == "" {
		return fmt.Errorf("vault directory must not be empty")
	}
	if _, err := store.ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.InactivityTimeout <= 0 {
		return fmt.Errorf("inactivity timeout must be positive, got %s", c.InactivityTimeout)
	}
	if c.PollInterval <= 0 || c.RefreshInterval <= 0 {
		return fmt.Errorf("poll and refresh intervals must be positive")
	}
	if c.MinPasswordScore < 0 || c.MinPasswordScore > 4 {
		return fmt.Errorf("min password score must be between 0 and 4, got %d", c.MinPasswordScore)
	}
	return nil
}

// Load builds a Config from defaults, the JSON file named in args (if any)
// and the flags in args. It returns the arguments left after the flags,
// typically a subcommand and its own arguments.
func Load(name string, args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// First pass only locates the JSON file; flags are applied again after it
	// so they take precedence.
	scratch := *cfg
	path, _, err := parseFlags(&scratch, name, args)
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		if err := parseJSONFile(cfg, path); err != nil {
			return nil, nil, err
		}
	}

	_, rest, err := parseFlags(cfg, name, args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
