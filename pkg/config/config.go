// Package config holds the validator process's runtime configuration:
// environment-variable-driven process settings plus a YAML genesis
// descriptor describing which verifying keys and note sizes this
// deployment supports.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the runtime settings read from the process environment.
type Config struct {
	// ListenAddr is the ABCI server's listen address (CometBFT connects
	// here as a client of this application).
	ListenAddr string

	// DataDir is the base directory for this validator's genesis
	// descriptor, key files, and any persisted state snapshots.
	DataDir string

	// ChainID identifies the CometBFT network this validator runs as part
	// of.
	ChainID string

	// LogLevel is the configured log verbosity, one of "debug", "info",
	// "warn", "error" (checked by Validate). No component in this module
	// reads it; the ABCI adapter's logger does not filter by level.
	LogLevel string

	// GenesisPath is the path to the YAML genesis descriptor (see
	// genesis.go) this validator was started with.
	GenesisPath string
}

// Load reads configuration from environment variables. Every variable has
// a development default; VALIDATOR_CHAIN_ID defaults to a devnet id, so
// any network beyond local testing sets it explicitly.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  getEnv("VALIDATOR_LISTEN_ADDR", "tcp://0.0.0.0:26658"),
		DataDir:     getEnv("VALIDATOR_DATA_DIR", "./data"),
		ChainID:     getEnv("VALIDATOR_CHAIN_ID", "cap-chain-devnet"),
		LogLevel:    getEnv("VALIDATOR_LOG_LEVEL", "info"),
		GenesisPath: getEnv("VALIDATOR_GENESIS_PATH", "./genesis.yaml"),
	}
	return cfg, nil
}

// Validate checks that Config is internally consistent enough to start a
// validator process with. It does not check that files referenced by
// GenesisPath actually exist; LoadGenesis reports that separately.
func (c *Config) Validate() error {
	var errs []string
	if c.ListenAddr == "" {
		errs = append(errs, "VALIDATOR_LISTEN_ADDR must not be empty")
	}
	if c.ChainID == "" {
		errs = append(errs, "VALIDATOR_CHAIN_ID must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("VALIDATOR_LOG_LEVEL must be one of debug/info/warn/error, got %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

