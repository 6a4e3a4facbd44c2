package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phishguard/phishguard/internal/analyzer"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "phishguard" {
		t.Errorf("Service.Name = %q, want phishguard", cfg.Service.Name)
	}
	if cfg.Service.Port != 8090 {
		t.Errorf("Service.Port = %d, want 8090", cfg.Service.Port)
	}
	if cfg.Service.Concurrency != 10 {
		t.Errorf("Service.Concurrency = %d, want 10", cfg.Service.Concurrency)
	}
	if cfg.Service.BatchLimit != 100 {
		t.Errorf("Service.BatchLimit = %d, want 100", cfg.Service.BatchLimit)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.SnapshotTTL != 60*time.Second {
		t.Errorf("Database.SnapshotTTL = %v, want 60s", cfg.Database.SnapshotTTL)
	}
	if cfg.Redis.ResultTTL != 24*time.Hour {
		t.Errorf("Redis.ResultTTL = %v, want 24h", cfg.Redis.ResultTTL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
service:
  name: phishguard-test
  port: 9999
  batch_limit: 25
database:
  driver: sqlite3
  path: /tmp/phishguard.db
  snapshot_ttl: 5m
redis:
  enabled: true
  addr: redis:6379
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "phishguard-test" {
		t.Errorf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.Service.Port != 9999 {
		t.Errorf("Service.Port = %d, want 9999", cfg.Service.Port)
	}
	if cfg.Service.BatchLimit != 25 {
		t.Errorf("Service.BatchLimit = %d, want 25", cfg.Service.BatchLimit)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
	}
	if cfg.Database.SnapshotTTL != 5*time.Minute {
		t.Errorf("Database.SnapshotTTL = %v, want 5m", cfg.Database.SnapshotTTL)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis.Enabled = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	// Unset fields still fall back to defaults.
	if cfg.Service.Concurrency != 10 {
		t.Errorf("Service.Concurrency = %d, want default 10", cfg.Service.Concurrency)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
service:
  port: 9999
database:
  host: db.internal
`)

	t.Setenv("PHISHGUARD_PORT", "7070")
	t.Setenv("POSTGRES_HOST", "db.override")
	t.Setenv("APP_DEBUG", "yes")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 7070 {
		t.Errorf("Service.Port = %d, env override must win", cfg.Service.Port)
	}
	if cfg.Database.Host != "db.override" {
		t.Errorf("Database.Host = %q, env override must win", cfg.Database.Host)
	}
	if !cfg.Service.Debug {
		t.Error("Service.Debug = false, want true from APP_DEBUG=yes")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "service: [not a mapping")

	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil for invalid YAML")
	}
}

func TestScoringConfig_Weights(t *testing.T) {
	var empty ScoringConfig
	w := empty.Weights()
	if w.Aggregator != analyzer.DefaultWeights().Aggregator {
		t.Errorf("empty scoring config Aggregator = %+v, want defaults", w.Aggregator)
	}
	if w.TyposquatLow != 0.75 {
		t.Errorf("TyposquatLow = %v, want 0.75", w.TyposquatLow)
	}
	if w.WildcardFloor != 0.85 {
		t.Errorf("WildcardFloor = %v, want 0.85", w.WildcardFloor)
	}

	custom := ScoringConfig{
		Aggregator: analyzer.AggregatorWeights{
			Domain: 0.5, Subdomain: 0.1, Path: 0.1, Query: 0.1, Heuristics: 0.2,
		},
		TyposquatLow: 0.8,
	}
	w = custom.Weights()
	if w.Aggregator.Domain != 0.5 {
		t.Errorf("Aggregator.Domain = %v, want 0.5", w.Aggregator.Domain)
	}
	if w.TyposquatLow != 0.8 {
		t.Errorf("TyposquatLow = %v, want 0.8", w.TyposquatLow)
	}
	// Sections left zero keep their defaults.
	if w.WildcardFloor != 0.85 {
		t.Errorf("WildcardFloor = %v, want default 0.85", w.WildcardFloor)
	}
	if w.Similarity != analyzer.DefaultWeights().Similarity {
		t.Errorf("Similarity = %+v, want defaults", w.Similarity)
	}
}

func TestParseBool(t *testing.T) {
	testCases := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" yes ", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"banana", false},
	}

	for _, tc := range testCases {
		if got := parseBool(tc.in); got != tc.want {
			t.Errorf("parseBool(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
