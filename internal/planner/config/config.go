// Package config loads server configuration from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the planner server configuration.
type Config struct {
	// DBPath is the SQLite catalog database path.
	DBPath string `yaml:"db_path"`
	// SnapshotPath, when set, is imported into the database at startup if
	// the database holds no recipes yet.
	SnapshotPath string `yaml:"snapshot_path"`
	// HTTP configures the HTTP API; an empty listen address keeps the
	// server in MCP stdio mode.
	HTTP struct {
		Listen string `yaml:"listen"`
	} `yaml:"http"`
	// AllowReload enables the /reload endpoint.
	AllowReload bool `yaml:"allow_reload"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in defaults.
func Default() Config {
	cfg := Config{
		DBPath:   "data/planner/catalog.db",
		LogLevel: "info",
	}
	return cfg
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
