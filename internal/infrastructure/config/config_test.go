package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTempConfig writes YAML content to a temp file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeTempConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8099 {
		t.Errorf("default server port = %d, want 8099", cfg.Server.Port)
	}
	if cfg.Hub.TokenEnv != "SUPERVISOR_TOKEN" {
		t.Errorf("default token env = %q, want SUPERVISOR_TOKEN", cfg.Hub.TokenEnv)
	}
	if len(cfg.Hub.BaseURLs) != 3 {
		t.Errorf("default base URL candidates = %d, want 3", len(cfg.Hub.BaseURLs))
	}
	if cfg.Hub.ProbeTimeout != 3 {
		t.Errorf("default probe timeout = %d, want 3", cfg.Hub.ProbeTimeout)
	}
	if cfg.Hub.MinLocationLength != 3 {
		t.Errorf("default min location length = %d, want 3", cfg.Hub.MinLocationLength)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9000
hub:
  base_urls:
    - "http://hub.local/api"
  min_location_length: 4
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("server port = %d, want 9000", cfg.Server.Port)
	}
	if len(cfg.Hub.BaseURLs) != 1 || cfg.Hub.BaseURLs[0] != "http://hub.local/api" {
		t.Errorf("base URLs = %v, want single hub.local entry", cfg.Hub.BaseURLs)
	}
	if cfg.Hub.MinLocationLength != 4 {
		t.Errorf("min location length = %d, want 4", cfg.Hub.MinLocationLength)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 9000\n")

	t.Setenv("MANUALHUB_SERVER_PORT", "9100")
	t.Setenv("MANUALHUB_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("MANUALHUB_HUB_BASE_URLS", "http://a/api, http://b/api")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("server port = %d, want 9100 (env override)", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database path = %q, want /tmp/override.db", cfg.Database.Path)
	}
	if len(cfg.Hub.BaseURLs) != 2 || cfg.Hub.BaseURLs[1] != "http://b/api" {
		t.Errorf("base URLs = %v, want two trimmed entries", cfg.Hub.BaseURLs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() with missing file should return an error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"empty manuals dir", func(c *Config) { c.Manuals.Dir = "" }},
		{"no base urls", func(c *Config) { c.Hub.BaseURLs = nil }},
		{"zero probe timeout", func(c *Config) { c.Hub.ProbeTimeout = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() should reject %s", tt.name)
			}
		})
	}
}
