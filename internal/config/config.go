// ABOUTME: Healthtrack configuration management with backend selection.
// ABOUTME: JSON settings file, environment overrides, and the backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/session"
	"github.com/harperreed/healthtrack/internal/storage"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config stores healthtrack configuration. Every field can be overridden by
// the environment variable named in its env tag.
type Config struct {
	// Backend selects the persistence service: "sqlite" (default) or "memory".
	// The memory backend forgets everything when the process exits.
	Backend string `json:"backend,omitempty" env:"HEALTHTRACK_BACKEND"`

	// DataDir is the root directory for data storage. SQLite puts
	// healthtrack.db here and the session cache under session/.
	// Supports ~ expansion. Defaults to ~/.local/share/healthtrack.
	DataDir string `json:"data_dir,omitempty" env:"HEALTHTRACK_DATA_DIR"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty" env:"HEALTHTRACK_LOG_LEVEL"`

	// RequestTimeout bounds each persistence call made by the stores, as a
	// Go duration string. Empty or "0" disables the timeout.
	RequestTimeout string `json:"request_timeout,omitempty" env:"HEALTHTRACK_REQUEST_TIMEOUT"`

	// FenceRequests drops results of superseded record fetches.
	FenceRequests bool `json:"fence_requests,omitempty" env:"HEALTHTRACK_FENCE_REQUESTS"`

	// SessionTTL is how long a sign-in lasts, as a Go duration string.
	SessionTTL string `json:"session_ttl,omitempty" env:"HEALTHTRACK_SESSION_TTL"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured log level, defaulting to warn.
func (c *Config) GetLogLevel() (log.Level, error) {
	if c.LogLevel == "" {
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// GetRequestTimeout returns the per-call timeout; zero means none.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return parseDuration("request_timeout", c.RequestTimeout, 0)
}

// GetSessionTTL returns the session lifetime, defaulting to
// storage.DefaultSessionTTL.
func (c *Config) GetSessionTTL() (time.Duration, error) {
	return parseDuration("session_ttl", c.SessionTTL, storage.DefaultSessionTTL)
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return def, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

// Validate checks every field that has a constrained value.
func (c *Config) Validate() error {
	switch c.GetBackend() {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	if _, err := c.GetRequestTimeout(); err != nil {
		return err
	}
	if _, err := c.GetSessionTTL(); err != nil {
		return err
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenBackend creates the persistence service for the configured backend.
func (c *Config) OpenBackend() (backend.Service, error) {
	dataDir := c.GetDataDir()

	switch c.GetBackend() {
	case BackendSQLite:
		ttl, err := c.GetSessionTTL()
		if err != nil {
			return nil, err
		}
		tokens, err := session.Open(filepath.Join(dataDir, "session"))
		if err != nil {
			return nil, err
		}
		db, err := storage.Open(filepath.Join(dataDir, "healthtrack.db"),
			storage.WithTokenStore(tokens),
			storage.WithSessionTTL(ttl),
		)
		if err != nil {
			_ = tokens.Close()
			return nil, err
		}
		return db, nil
	case BackendMemory:
		return backend.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healthtrack", "config.json")
}

// Load reads config from disk, then applies environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
