package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.DataBackend != "jsonfile" {
		t.Fatalf("unexpected default backend: %s", cfg.DataBackend)
	}
	if cfg.DataFile != "./data/expenses.json" {
		t.Fatalf("unexpected default data file: %s", cfg.DataFile)
	}
	if cfg.AMQPURL != "" {
		t.Fatalf("AMQP must be disabled by default, got %q", cfg.AMQPURL)
	}
	if cfg.ExportBatchSize != 10 || cfg.ExportInterval != 30*time.Second {
		t.Fatalf("unexpected export defaults: %d %v", cfg.ExportBatchSize, cfg.ExportInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("EXPORT_BATCH_SIZE", "25")
	t.Setenv("EXPORT_INTERVAL", "2m")

	cfg := Load()
	if cfg.Port != "9000" || cfg.DataBackend != "sqlite" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.ExportBatchSize != 25 || cfg.ExportInterval != 2*time.Minute {
		t.Fatalf("env not applied to worker settings: %+v", cfg)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Port:            "8081",
		DataBackend:     "jsonfile",
		DataFile:        filepath.Join(dir, "expenses.json"),
		SQLiteDBPath:    filepath.Join(dir, "ledger.db"),
		AMQPExchange:    "ledger",
		AMQPQueue:       "export_records",
		ExportBatchSize: 10,
		ExportInterval:  30 * time.Second,
		CacheTTL:        5 * time.Minute,
	}
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"bad port", func(c *Config) { c.Port = "nope" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"bad backend", func(c *Config) { c.DataBackend = "redis" }, "invalid data backend"},
		{"empty data file", func(c *Config) { c.DataFile = "" }, "data file path cannot be empty"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme"},
		{"empty queue with amqp", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"batch too small", func(c *Config) { c.ExportBatchSize = 0 }, "at least 1"},
		{"interval too short", func(c *Config) { c.ExportInterval = 100 * time.Millisecond }, "at least 1 second"},
		{"negative cache ttl", func(c *Config) { c.CacheTTL = -time.Second }, "must not be negative"},
	}
	for _, tc := range cases {
		cfg := validConfig(t)
		tc.mut(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "nope"
	cfg.DataBackend = "redis"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid data backend") {
		t.Fatalf("expected both problems reported, got %q", err)
	}
}
