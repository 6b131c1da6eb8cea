package config

import (
	"flag"
	"io"

	"github.com/Hussein-Mazeh/guardvault/store"
)

// parseFlags overlays cfg with global command-line flags. It returns the JSON
// config path given with -c/-config and the remaining arguments.
//
// Supported flags:
//
//	-c, -config string  JSON config file
//	-dir string         vault directory
//	-backend string     storage backend: file, sqlite, keychain or memory
//	-timeout duration   inactivity timeout
//	-poll duration      inactivity check interval
//	-refresh duration   code refresh interval
//	-min-score int      minimum zxcvbn score for new master passwords
//	-log-level string   debug, info, warn or error
func parseFlags(cfg *Config, name string, args []string) (string, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configPath string
	fs.StringVar(&configPath, "c", "", "JSON config file")
	fs.StringVar(&configPath, "config", "", "JSON config file")

	backend := string(cfg.Backend)
	fs.StringVar(&cfg.VaultDir, "dir", cfg.VaultDir, "vault directory")
	fs.StringVar(&backend, "backend", backend, "storage backend (file, sqlite, keychain, memory)")
	fs.DurationVar(&cfg.InactivityTimeout, "timeout", cfg.InactivityTimeout, "inactivity timeout")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "inactivity check interval")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval, "code refresh interval")
	fs.IntVar(&cfg.MinPasswordScore, "min-score", cfg.MinPasswordScore, "minimum password strength score (0-4)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}

	b, err := store.ParseBackend(backend)
	if err != nil {
		return "", nil, err
	}
	cfg.Backend = b
	return configPath, fs.Args(), nil
}
