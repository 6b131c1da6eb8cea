package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Hussein-Mazeh/guardvault/store"
)

// Duration decodes from a JSON string such as "10s" or from integer
// nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// JSONConfig is the on-disk shape of the config file. Absent fields keep the
// value already in Config.
type JSONConfig struct {
	VaultDir          string    `json:"vault_dir"`
	Backend           string    `json:"backend"`
	InactivityTimeout *Duration `json:"inactivity_timeout"`
	PollInterval      *Duration `json:"poll_interval"`
	RefreshInterval   *Duration `json:"refresh_interval"`
	MinPasswordScore  *int      `json:"min_password_score"`
	LogLevel          string    `json:"log_level"`
}

// parseJSONFile overlays cfg with the values from the JSON file at path.
func parseJSONFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return jc.apply(cfg)
}

func (jc JSONConfig) apply(cfg *Config) error {
	if jc.VaultDir != "" {
		cfg.VaultDir = jc.VaultDir
	}
	if jc.Backend != "" {
		b, err := store.ParseBackend(jc.Backend)
		if err != nil {
			return err
		}
		cfg.Backend = b
	}
	if jc.InactivityTimeout != nil {
		cfg.InactivityTimeout = jc.InactivityTimeout.Duration
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RefreshInterval != nil {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.MinPasswordScore != nil {
		cfg.MinPasswordScore = *jc.MinPasswordScore
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
