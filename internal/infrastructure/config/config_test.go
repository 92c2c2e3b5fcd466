package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
service:
  id: "test-service"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
fleet:
  online_window: 30
  queue_capacity: 100
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-service" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-service")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Fleet.QueueCapacity != 100 {
		t.Errorf("Fleet.QueueCapacity = %d, want 100", cfg.Fleet.QueueCapacity)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// A minimal file picks up defaults for everything unspecified.
	cfg, err := Load(writeConfig(t, `service: {id: "x"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Fleet.OnlineWindow != 30 {
		t.Errorf("Fleet.OnlineWindow = %d, want 30", cfg.Fleet.OnlineWindow)
	}
	if cfg.Fleet.QueueCapacity != 0 {
		t.Errorf("Fleet.QueueCapacity = %d, want 0 (unbounded)", cfg.Fleet.QueueCapacity)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
	if cfg.InfluxDB.Enabled {
		t.Error("InfluxDB should be disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROOMLINK_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("ROOMLINK_API_PORT", "9090")

	cfg, err := Load(writeConfig(t, `
service:
  id: "test-service"
database:
  path: "/tmp/original.db"
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config is valid",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty service id",
			modify:  func(c *Config) { c.Service.ID = "" },
			wantErr: true,
		},
		{
			name:    "empty database path",
			modify:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			modify:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "tls enabled without cert",
			modify:  func(c *Config) { c.API.TLS.Enabled = true },
			wantErr: true,
		},
		{
			name:    "zero online window",
			modify:  func(c *Config) { c.Fleet.OnlineWindow = 0 },
			wantErr: true,
		},
		{
			name:    "negative queue capacity",
			modify:  func(c *Config) { c.Fleet.QueueCapacity = -1 },
			wantErr: true,
		},
		{
			name: "mqtt enabled without host",
			modify: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			modify: func(c *Config) {
				c.InfluxDB.Enabled = true
			},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
