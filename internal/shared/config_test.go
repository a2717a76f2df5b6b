package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://127.0.0.1:8000" {
			t.Errorf("expected api base URL http://127.0.0.1:8000, got %s", config.API.BaseURL)
		}
		if config.Dashboard.DisplayCap != 50 {
			t.Errorf("expected display cap 50, got %d", config.Dashboard.DisplayCap)
		}
		if config.Dashboard.TopN != 10 {
			t.Errorf("expected top n 10, got %d", config.Dashboard.TopN)
		}
		if config.Database.Path != "./songdash.db" {
			t.Errorf("expected database path ./songdash.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8000 {
			t.Errorf("expected server port 8000, got %d", config.Server.Port)
		}
		if got := config.API.Timeout(); got != 15*time.Second {
			t.Errorf("expected timeout 15s, got %v", got)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[api]
base_url = "http://catalog.local:9000"
token = "secret"

[dashboard]
display_cap = 25

[server]
port = 9090
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://catalog.local:9000" {
			t.Errorf("expected base URL from file, got %s", config.API.BaseURL)
		}
		if config.API.Token != "secret" {
			t.Errorf("expected token secret, got %s", config.API.Token)
		}
		if config.Dashboard.DisplayCap != 25 {
			t.Errorf("expected display cap 25, got %d", config.Dashboard.DisplayCap)
		}
		if config.Dashboard.TopN != 10 {
			t.Errorf("expected top n to keep default 10, got %d", config.Dashboard.TopN)
		}
		if config.Server.Addr() != "127.0.0.1:9090" {
			t.Errorf("expected addr 127.0.0.1:9090, got %s", config.Server.Addr())
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = "" }},
			{name: "negative rate limit", mutate: func(c *Config) { c.API.RateLimit = -1 }},
			{name: "zero display cap", mutate: func(c *Config) { c.Dashboard.DisplayCap = 0 }},
			{name: "zero top n", mutate: func(c *Config) { c.Dashboard.TopN = 0 }},
			{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}

func TestEnv(t *testing.T) {
	t.Run("ApplyEnv overrides", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://env.local")
		t.Setenv(EnvAPIToken, "env-token")
		t.Setenv(EnvDBPath, "/tmp/env.db")
		t.Setenv(EnvServerPort, "7000")

		config := DefaultConfig()
		if err := config.ApplyEnv(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.API.BaseURL != "http://env.local" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
		if config.API.Token != "env-token" {
			t.Errorf("expected env token, got %s", config.API.Token)
		}
		if config.Database.Path != "/tmp/env.db" {
			t.Errorf("expected env db path, got %s", config.Database.Path)
		}
		if config.Server.Port != 7000 {
			t.Errorf("expected env port 7000, got %d", config.Server.Port)
		}
	})

	t.Run("ApplyEnv bad port", func(t *testing.T) {
		t.Setenv(EnvServerPort, "eighty")
		if err := DefaultConfig().ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("SONGDASH_API_URL=http://dotenv.local\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvAPIURL, "")
		os.Unsetenv(EnvAPIURL)

		if err := LoadEnv(envPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv(EnvAPIURL); got != "http://dotenv.local" {
			t.Errorf("expected value from .env, got %q", got)
		}
	})

	t.Run("LoadEnv missing file", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("missing .env should be ignored, got %v", err)
		}
	})
}
