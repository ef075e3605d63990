// Package config defines all configuration structures for the ReviewPulse
// dashboard backend.  No I/O or parsing logic lives here, only plain data types
// and validation.
package config

import (
	"fmt"
	"math"
	"time"
)

// Dataset source kinds accepted by dataset.source.
const (
	SourceCSV      = "csv"
	SourceMinIO    = "minio"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSOrigins enables CORS for the listed origins; empty disables it.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "console"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ColumnConfig names the tabular columns of the review export.  Topic
// columns carry the topic name itself.
type ColumnConfig struct {
	Entity string `mapstructure:"entity"`
	Date   string `mapstructure:"date"`
	Rating string `mapstructure:"rating"`
	Text   string `mapstructure:"text"`
}

// DatasetConfig selects where the review snapshot is loaded from and how
// its axis is laid out.
type DatasetConfig struct {
	Source    string       `mapstructure:"source"` // "csv" | "minio" | "postgres" | "sqlite"
	Path      string       `mapstructure:"path"`
	Delimiter string       `mapstructure:"delimiter"`
	Topics    []string     `mapstructure:"topics"`
	Columns   ColumnConfig `mapstructure:"columns"`
	AxisStart string       `mapstructure:"axis_start"`
	AxisEnd   string       `mapstructure:"axis_end"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// MigrationPath overrides the embedded schema with a golang-migrate
	// source URL such as "file://migrations".
	MigrationPath string `mapstructure:"migration_path"`
}

// SQLiteConfig holds the embedded database file used by the sqlite source.
type SQLiteConfig struct {
	Path          string `mapstructure:"path"`
	MigrationPath string `mapstructure:"migration_path"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Object    string `mapstructure:"object"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// RedisConfig holds the result-cache connection parameters.
type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Mode          string        `mapstructure:"mode"` // "standalone" | "sentinel" | "cluster"
	Addr          string        `mapstructure:"addr"`
	MasterName    string        `mapstructure:"master_name"`
	SentinelAddrs []string      `mapstructure:"sentinel_addrs"`
	ClusterAddrs  []string      `mapstructure:"cluster_addrs"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	PoolSize      int           `mapstructure:"pool_size"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
}

// AnalyticsConfig holds the dashboard defaults applied to partial queries.
type AnalyticsConfig struct {
	PercentThreshold float64 `mapstructure:"percent_threshold"`
	RatingThreshold  float64 `mapstructure:"rating_threshold"`
	// BoundUpper is the exclusive upper rating of the default detail bound.
	BoundUpper int           `mapstructure:"bound_upper"`
	Workers    int           `mapstructure:"workers"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// MetricsConfig controls the Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// TracingConfig controls OTLP span export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	ServiceName string  `mapstructure:"service_name"`
}

// RateLimitConfig holds the per-process token bucket of the HTTP API.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and application service reads its settings from the relevant sub-struct.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Database  DatabaseConfig  `mapstructure:"database"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if err := c.validateDataset(); err != nil {
		return err
	}

	// Redis
	if c.Redis.Enabled {
		switch c.Redis.Mode {
		case "standalone":
			if c.Redis.Addr == "" {
				return fmt.Errorf("config: redis.addr is required")
			}
		case "sentinel":
			if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
				return fmt.Errorf("config: redis.master_name and redis.sentinel_addrs are required in sentinel mode")
			}
		case "cluster":
			if len(c.Redis.ClusterAddrs) == 0 {
				return fmt.Errorf("config: redis.cluster_addrs is required in cluster mode")
			}
		default:
			return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	// Analytics
	a := c.Analytics
	if a.PercentThreshold < 0 || a.PercentThreshold > 30 || a.PercentThreshold != math.Trunc(a.PercentThreshold) {
		return fmt.Errorf("config: analytics.percent_threshold %v must be an integer in [0, 30]", a.PercentThreshold)
	}
	if a.RatingThreshold < 0.1-1e-9 || a.RatingThreshold > 1.5+1e-9 {
		return fmt.Errorf("config: analytics.rating_threshold %v is out of range [0.1, 1.5]", a.RatingThreshold)
	}
	if a.BoundUpper < 1 || a.BoundUpper > 6 {
		return fmt.Errorf("config: analytics.bound_upper %d is out of range [1, 6]", a.BoundUpper)
	}
	if a.Workers < 1 {
		return fmt.Errorf("config: analytics.workers must be >= 1, got %d", a.Workers)
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("config: tracing.endpoint is required when tracing is enabled")
		}
		if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
			return fmt.Errorf("config: tracing.sample_ratio %v is out of range [0, 1]", c.Tracing.SampleRatio)
		}
	}

	// Rate limit
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("config: ratelimit.rps must be > 0 and ratelimit.burst >= 1")
	}

	return nil
}

func (c *Config) validateDataset() error {
	d := c.Dataset
	switch d.Source {
	case SourceCSV:
		if d.Path == "" {
			return fmt.Errorf("config: dataset.path is required for the csv source")
		}
	case SourceMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" || c.MinIO.Object == "" {
			return fmt.Errorf("config: minio.endpoint, minio.bucket and minio.object are required for the minio source")
		}
	case SourcePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
	case SourceSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("config: sqlite.path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("config: dataset.source %q is invalid; expected csv|minio|postgres|sqlite", d.Source)
	}
	if len([]rune(d.Delimiter)) != 1 {
		return fmt.Errorf("config: dataset.delimiter must be a single character, got %q", d.Delimiter)
	}
	if d.Columns.Entity == "" || d.Columns.Date == "" || d.Columns.Rating == "" {
		return fmt.Errorf("config: dataset.columns.entity, date and rating are required")
	}
	if d.AxisStart == "" || d.AxisEnd == "" {
		return fmt.Errorf("config: dataset.axis_start and dataset.axis_end are required")
	}
	return nil
}

//Personal.AI order the ending
