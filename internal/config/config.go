// Package config provides configuration loading and validation for the
// safety-inspector CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigurationError indicates missing or invalid server-side configuration
// (credentials, connection strings). It is a server-misconfiguration class,
// deliberately distinct from user-input errors.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error: %s - %s", e.Key, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults, env
// variables, or must be provided via CLI flags.
type Config struct {
	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	ListenAddr  string `json:"listen_addr,omitempty"`  // HTTP listen address for serve mode
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information

	// Defaults for validation runs
	ProjectID     string `json:"project_id,omitempty"`     // Default project UUID for CLI validation
	HistoryWindow int    `json:"history_window,omitempty"` // Prior reports fetched per history stage
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills empty fields from environment variables.
func (c *Config) FromEnv() *Config {
	result := *c
	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if result.ListenAddr == "" {
		result.ListenAddr = os.Getenv("LISTEN_ADDR")
	}
	return &result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.HistoryWindow < 0 {
		return fmt.Errorf("config error: 'history_window' must be non-negative")
	}
	return nil
}

// RequireServer checks the fields the HTTP server cannot run without and
// returns a ConfigurationError naming the first missing one.
func (c *Config) RequireServer() error {
	if c.DatabaseURL == "" {
		return &ConfigurationError{Key: "database_url", Message: "required for serve mode (env DATABASE_URL)"}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.ProjectID == "" {
		result.ProjectID = defaults.ProjectID
	}
	if result.HistoryWindow == 0 {
		result.HistoryWindow = defaults.HistoryWindow
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
