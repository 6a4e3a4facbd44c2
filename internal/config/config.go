// Package config holds service configuration loaded from YAML with
// environment variable overrides.
package config

import (
	"time"

	"github.com/phishguard/phishguard/internal/analyzer"
	"github.com/phishguard/phishguard/internal/similarity"
)

// Default configuration values.
const (
	defaultServiceName    = "phishguard"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8090
	defaultConcurrency    = 10
	defaultBatchLimit     = 100
	defaultScanRPS        = 100
	defaultDBDriver       = "postgres"
	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "phishguard"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5
	defaultSnapshotTTLSec = 60
	defaultRedisAddr      = "localhost:6379"
	defaultCacheTTLHours  = 24
	defaultLogLevel       = "info"
)

// Config holds all configuration for the phishguard service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Port        int    `env:"PHISHGUARD_PORT"        yaml:"port"`
	Debug       bool   `env:"APP_DEBUG"              yaml:"debug"`
	Concurrency int    `env:"PHISHGUARD_CONCURRENCY" yaml:"concurrency"`
	BatchLimit  int    `yaml:"batch_limit"`
	ScanRPS     int    `yaml:"scan_rps"`
}

// DatabaseConfig holds database configuration. Driver is "postgres" in
// deployment; "sqlite3" is supported for local development.
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER"         yaml:"driver"`
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	Path            string        `env:"SQLITE_PATH"       yaml:"path"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
	SnapshotTTL     time.Duration `yaml:"snapshot_ttl"`
}

// RedisConfig holds the result-cache configuration.
type RedisConfig struct {
	Enabled   bool          `env:"REDIS_ENABLED"  yaml:"enabled"`
	Addr      string        `env:"REDIS_ADDR"     yaml:"addr"`
	Password  string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database  int           `yaml:"database"`
	ResultTTL time.Duration `yaml:"result_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// ScoringConfig exposes the engine's tunable weight tables.
type ScoringConfig struct {
	Aggregator    analyzer.AggregatorWeights `yaml:"aggregator"`
	Similarity    similarity.Weights         `yaml:"similarity"`
	TyposquatLow  float64                    `yaml:"typosquat_low"`
	WildcardFloor float64                    `yaml:"wildcard_floor"`
}

// Weights converts the scoring section into the engine's ScoringWeights,
// falling back to the tuned defaults for any unset table.
func (s ScoringConfig) Weights() analyzer.ScoringWeights {
	w := analyzer.DefaultWeights()
	if s.Aggregator != (analyzer.AggregatorWeights{}) {
		w.Aggregator = s.Aggregator
	}
	if s.Similarity != (similarity.Weights{}) {
		w.Similarity = s.Similarity
	}
	if s.TyposquatLow != 0 {
		w.TyposquatLow = s.TyposquatLow
	}
	if s.WildcardFloor != 0 {
		w.WildcardFloor = s.WildcardFloor
	}
	return w
}

// Load loads configuration from path, applies defaults, then re-applies
// environment overrides so the environment always wins.
func Load(path string) (*Config, error) {
	return loadWithDefaults(path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchLimit == 0 {
		s.BatchLimit = defaultBatchLimit
	}
	if s.ScanRPS == 0 {
		s.ScanRPS = defaultScanRPS
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
	if d.SnapshotTTL == 0 {
		d.SnapshotTTL = defaultSnapshotTTLSec * time.Second
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = defaultRedisAddr
	}
	if r.ResultTTL == 0 {
		r.ResultTTL = defaultCacheTTLHours * time.Hour
	}
}
