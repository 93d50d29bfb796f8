package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a temporary YAML config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "graystore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT host = %q, want localhost", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.HTTP.Port != 8082 {
		t.Errorf("HTTP port = %d, want 8082", cfg.HTTP.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker:
    host: broker.local
    port: 8883
    tls: true
http:
  port: 9090
store:
  snapshot_path: ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT host = %q, want broker.local", cfg.MQTT.Broker.Host)
	}
	if got := cfg.MQTT.BrokerURI(); got != "ssl://broker.local:8883" {
		t.Errorf("BrokerURI() = %q, want ssl://broker.local:8883", got)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("HTTP port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Store.SnapshotPath != "" {
		t.Errorf("snapshot path = %q, want empty (disabled)", cfg.Store.SnapshotPath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker:
    host: from-file
`)

	t.Setenv("GRAYSTORE_MQTT_HOST", "from-env")
	t.Setenv("GRAYSTORE_HTTP_PORT", "18082")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("MQTT host = %q, want from-env", cfg.MQTT.Broker.Host)
	}
	if cfg.HTTP.Port != 18082 {
		t.Errorf("HTTP port = %d, want 18082", cfg.HTTP.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid broker port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.MQTT.Broker.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "snapshot interval zero with snapshots enabled",
			mutate:  func(c *Config) { c.Store.SnapshotInterval = 0 },
			wantErr: true,
		},
		{
			name: "snapshots disabled ignores interval",
			mutate: func(c *Config) {
				c.Store.SnapshotPath = ""
				c.Store.SnapshotInterval = 0
			},
			wantErr: false,
		},
		{
			name:    "history enabled without url",
			mutate:  func(c *Config) { c.History.Enabled = true },
			wantErr: true,
		},
		{
			name: "history enabled fully configured",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.URL = "http://localhost:8086"
				c.History.Bucket = "retained"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
