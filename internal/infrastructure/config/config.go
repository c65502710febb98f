package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the manual hub.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hub      HubConfig      `yaml:"hub"`
	Manuals  ManualsConfig  `yaml:"manuals"`
	Legacy   LegacyConfig   `yaml:"legacy"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP API server settings.
type ServerConfig struct {
	Host     string              `yaml:"host"`
	Port     int                 `yaml:"port"`
	Timeouts ServerTimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig          `yaml:"cors"`
}

// ServerTimeoutConfig contains HTTP timeout settings in seconds.
type ServerTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// HubConfig contains settings for the upstream home-automation hub.
//
// The hub's API surface is not reliably known at configuration time, so
// BaseURLs is an ordered candidate list; the client probes them at startup
// and uses the first one that answers.
type HubConfig struct {
	Enabled bool `yaml:"enabled"`

	// BaseURLs is the ordered list of candidate API base URLs.
	BaseURLs []string `yaml:"base_urls"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`

	// ProbeTimeout bounds each base URL probe, in seconds.
	ProbeTimeout int `yaml:"probe_timeout"`

	// RequestTimeout bounds each registry/state request, in seconds.
	RequestTimeout int `yaml:"request_timeout"`

	// MinLocationLength is the length a friendly-name prefix must exceed
	// to be accepted as an inferred location.
	MinLocationLength int `yaml:"min_location_length"`

	// StopWords are leading words never accepted as locations (articles).
	// Compared case-insensitively.
	StopWords []string `yaml:"stop_words"`
}

// ManualsConfig contains PDF manual storage settings.
type ManualsConfig struct {
	// Dir is the directory where uploaded PDF manuals are stored.
	Dir string `yaml:"dir"`

	// MaxUploadMB is the maximum accepted upload size in megabytes.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// LegacyConfig points at the flat-JSON documents used by earlier releases.
// When the SQLite store is empty and these files exist, their contents are
// imported once at startup.
type LegacyConfig struct {
	DevicesFile       string `yaml:"devices_file"`
	LocationsFile     string `yaml:"locations_file"`
	ManualMappingFile string `yaml:"manual_mapping_file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MANUALHUB_SECTION_KEY
// For example: MANUALHUB_DATABASE_PATH, MANUALHUB_SERVER_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
//
// The hub base URL candidates cover the common deployments: the supervisor
// proxy inside a hub add-on, the standard mDNS hostname, and localhost.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8099,
			Timeouts: ServerTimeoutConfig{
				Read:  15,
				Write: 30,
				Idle:  60,
			},
		},
		Database: DatabaseConfig{
			Path:        "data/manualhub.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Hub: HubConfig{
			Enabled: true,
			BaseURLs: []string{
				"http://supervisor/core/api",
				"http://homeassistant.local:8123/api",
				"http://localhost:8123/api",
			},
			TokenEnv:          "SUPERVISOR_TOKEN",
			ProbeTimeout:      3,
			RequestTimeout:    10,
			MinLocationLength: 3,
			StopWords:         []string{"der", "die", "das", "the"},
		},
		Manuals: ManualsConfig{
			Dir:         "data/manuals",
			MaxUploadMB: 50,
		},
		Legacy: LegacyConfig{
			DevicesFile:       "data/devices/devices.json",
			LocationsFile:     "data/locations.json",
			ManualMappingFile: "data/devices/manual_mapping.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Manuals.Dir == "" {
		return fmt.Errorf("manuals.dir is required")
	}
	if c.Hub.Enabled && len(c.Hub.BaseURLs) == 0 {
		return fmt.Errorf("hub.base_urls must not be empty when hub is enabled")
	}
	if c.Hub.ProbeTimeout < 1 {
		return fmt.Errorf("hub.probe_timeout must be at least 1 second")
	}
	if c.Hub.RequestTimeout < 1 {
		return fmt.Errorf("hub.request_timeout must be at least 1 second")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides overrides config values from MANUALHUB_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MANUALHUB_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MANUALHUB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MANUALHUB_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MANUALHUB_MANUALS_DIR"); v != "" {
		cfg.Manuals.Dir = v
	}
	if v := os.Getenv("MANUALHUB_HUB_BASE_URLS"); v != "" {
		cfg.Hub.BaseURLs = splitAndTrim(v)
	}
	if v := os.Getenv("MANUALHUB_HUB_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Hub.Enabled = enabled
		}
	}
	if v := os.Getenv("MANUALHUB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MANUALHUB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// splitAndTrim splits a comma-separated list, dropping empty entries.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
