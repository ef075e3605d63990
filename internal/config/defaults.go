// Package config provides configuration loading, defaults, and validation for
// the ReviewPulse dashboard backend.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerShutdownTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"

	DefaultDatasetSource    = SourceCSV
	DefaultDatasetPath      = "google_reviews.csv"
	DefaultDatasetDelimiter = ","
	DefaultColumnEntity     = "name"
	DefaultColumnDate       = "date"
	DefaultColumnRating     = "Rating"
	DefaultColumnText       = "Review"
	DefaultAxisStart        = "2018Q1"
	DefaultAxisEnd          = "2024Q2"

	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBName         = "reviewpulse"
	DefaultDBSSLMode      = "disable"
	DefaultDBMaxConns     = 10
	DefaultDBMaxIdleConns = 2
	DefaultDBConnLifetime = 30 * time.Minute

	DefaultSQLitePath = "reviewpulse.db"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "reviewpulse"

	DefaultRedisMode      = "standalone"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "reviewpulse:"
	DefaultRedisTTL       = 10 * time.Minute

	DefaultPercentThreshold = 10.0
	DefaultRatingThreshold  = 1.0
	DefaultBoundUpper       = 5
	DefaultWorkers          = 4

	DefaultMetricsNamespace = "reviewpulse"
	DefaultMetricsPath      = "/metrics"

	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "reviewpulse"

	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100
)

// defaultValues lists every scalar default by its viper key.  Registering
// them with viper is what lets REVIEWPULSE_* variables reach keys that are
// absent from the YAML file.
var defaultValues = map[string]interface{}{
	"server.host":             DefaultServerHost,
	"server.port":             DefaultServerPort,
	"server.mode":             DefaultServerMode,
	"server.read_timeout":     DefaultServerReadTimeout,
	"server.write_timeout":    DefaultServerWriteTimeout,
	"server.max_body_size":    DefaultServerMaxBodySize,
	"server.shutdown_timeout": DefaultServerShutdownTimeout,

	"log.level":  DefaultLogLevel,
	"log.format": DefaultLogFormat,
	"log.output": DefaultLogOutput,

	"dataset.source":         DefaultDatasetSource,
	"dataset.path":           DefaultDatasetPath,
	"dataset.delimiter":      DefaultDatasetDelimiter,
	"dataset.topics":         []string{},
	"dataset.columns.entity": DefaultColumnEntity,
	"dataset.columns.date":   DefaultColumnDate,
	"dataset.columns.rating": DefaultColumnRating,
	"dataset.columns.text":   DefaultColumnText,
	"dataset.axis_start":     DefaultAxisStart,
	"dataset.axis_end":       DefaultAxisEnd,

	"database.host":              DefaultDBHost,
	"database.port":              DefaultDBPort,
	"database.user":              "",
	"database.password":          "",
	"database.db_name":           DefaultDBName,
	"database.ssl_mode":          DefaultDBSSLMode,
	"database.max_conns":         DefaultDBMaxConns,
	"database.max_idle_conns":    DefaultDBMaxIdleConns,
	"database.conn_max_lifetime": DefaultDBConnLifetime,
	"database.migration_path":    "",

	"sqlite.path":           DefaultSQLitePath,
	"sqlite.migration_path": "",

	"minio.endpoint":   DefaultMinIOEndpoint,
	"minio.access_key": "",
	"minio.secret_key": "",
	"minio.region":     "",
	"minio.bucket":     DefaultMinIOBucket,
	"minio.object":     "",
	"minio.use_ssl":    false,

	"redis.enabled":     false,
	"redis.mode":        DefaultRedisMode,
	"redis.addr":        DefaultRedisAddr,
	"redis.password":    "",
	"redis.db":          0,
	"redis.key_prefix":  DefaultRedisKeyPrefix,
	"redis.default_ttl": DefaultRedisTTL,

	"analytics.percent_threshold": DefaultPercentThreshold,
	"analytics.rating_threshold":  DefaultRatingThreshold,
	"analytics.bound_upper":       DefaultBoundUpper,
	"analytics.workers":           DefaultWorkers,
	"analytics.cache_ttl":         DefaultRedisTTL,

	"metrics.enabled":   true,
	"metrics.namespace": DefaultMetricsNamespace,
	"metrics.path":      DefaultMetricsPath,

	"tracing.enabled":      false,
	"tracing.endpoint":     "",
	"tracing.insecure":     false,
	"tracing.sample_ratio": DefaultTracingSampleRatio,
	"tracing.service_name": DefaultTracingServiceName,

	"ratelimit.enabled": false,
	"ratelimit.rps":     DefaultRateLimitRPS,
	"ratelimit.burst":   DefaultRateLimitBurst,
}

// setViperDefaults registers defaultValues on v.
func setViperDefaults(v *viper.Viper) {
	for k, val := range defaultValues {
		v.SetDefault(k, val)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the default.  Fields
// that have already been set (non-zero values) are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Dataset ───────────────────────────────────────────────────────────────
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = DefaultDatasetSource
	}
	if cfg.Dataset.Path == "" && cfg.Dataset.Source == SourceCSV {
		cfg.Dataset.Path = DefaultDatasetPath
	}
	if cfg.Dataset.Delimiter == "" {
		cfg.Dataset.Delimiter = DefaultDatasetDelimiter
	}
	if cfg.Dataset.Columns.Entity == "" {
		cfg.Dataset.Columns.Entity = DefaultColumnEntity
	}
	if cfg.Dataset.Columns.Date == "" {
		cfg.Dataset.Columns.Date = DefaultColumnDate
	}
	if cfg.Dataset.Columns.Rating == "" {
		cfg.Dataset.Columns.Rating = DefaultColumnRating
	}
	if cfg.Dataset.Columns.Text == "" {
		cfg.Dataset.Columns.Text = DefaultColumnText
	}
	if cfg.Dataset.AxisStart == "" {
		cfg.Dataset.AxisStart = DefaultAxisStart
	}
	if cfg.Dataset.AxisEnd == "" {
		cfg.Dataset.AxisEnd = DefaultAxisEnd
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnLifetime
	}

	// ── SQLite ────────────────────────────────────────────────────────────────
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}

	// ── Analytics ─────────────────────────────────────────────────────────────
	// A zero percent threshold is a legal slider position, so it is only
	// defaulted together with the rest of an untouched section.
	if cfg.Analytics == (AnalyticsConfig{}) {
		cfg.Analytics.PercentThreshold = DefaultPercentThreshold
	}
	if cfg.Analytics.RatingThreshold == 0 {
		cfg.Analytics.RatingThreshold = DefaultRatingThreshold
	}
	if cfg.Analytics.BoundUpper == 0 {
		cfg.Analytics.BoundUpper = DefaultBoundUpper
	}
	if cfg.Analytics.Workers == 0 {
		cfg.Analytics.Workers = DefaultWorkers
	}
	if cfg.Analytics.CacheTTL == 0 {
		cfg.Analytics.CacheTTL = cfg.Redis.DefaultTTL
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Tracing ───────────────────────────────────────────────────────────────
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}

	// ── Rate limit ────────────────────────────────────────────────────────────
	if cfg.RateLimit.RPS == 0 {
		cfg.RateLimit.RPS = DefaultRateLimitRPS
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}
}

//Personal.AI order the ending
