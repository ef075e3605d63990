package bootstrap

import (
	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/redis"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/tracing"
)

// Defaults maps the analytics section onto engine defaults.  The default
// detail bound is always "below BoundUpper".
func Defaults(cfg config.AnalyticsConfig) analytics.Defaults {
	return analytics.Defaults{
		PercentThreshold: cfg.PercentThreshold,
		RatingThreshold:  cfg.RatingThreshold,
		RatingBound:      analytics.RatingBound{Mode: analytics.BoundBelow, Upper: cfg.BoundUpper},
	}
}

// EngineOptions builds the quarter axis, defaults and worker bound.
func EngineOptions(ds config.DatasetConfig, an config.AnalyticsConfig) ([]analytics.EngineOption, error) {
	axis, err := analytics.ParseQuarterAxis(ds.AxisStart, ds.AxisEnd)
	if err != nil {
		return nil, err
	}
	return []analytics.EngineOption{
		analytics.WithQuarterAxis(axis),
		analytics.WithDefaults(Defaults(an)),
		analytics.WithWorkers(an.Workers),
	}, nil
}

// RedisConfig maps the redis section onto the client config.
func RedisConfig(cfg config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Mode:          cfg.Mode,
		Addr:          cfg.Addr,
		MasterName:    cfg.MasterName,
		SentinelAddrs: cfg.SentinelAddrs,
		ClusterAddrs:  cfg.ClusterAddrs,
		Password:      cfg.Password,
		DB:            cfg.DB,
		PoolSize:      cfg.PoolSize,
		DialTimeout:   cfg.DialTimeout,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
	}
}

// LogConfig maps the log section onto the zap-backed logger config.  An
// empty output writes to stdout.
func LogConfig(cfg config.LogConfig) logging.LogConfig {
	out := logging.LogConfig{Level: cfg.Level, Format: cfg.Format}
	if cfg.Output != "" {
		out.OutputPaths = []string{cfg.Output}
	}
	return out
}

// TracingConfig maps the tracing section onto the provider config.
func TracingConfig(cfg config.TracingConfig, version string) tracing.Config {
	return tracing.Config{
		Enabled:        cfg.Enabled,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		SampleRatio:    cfg.SampleRatio,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
	}
}

// NewCollector returns a registry-backed collector, or the no-op collector
// when metrics are disabled.
func NewCollector(cfg config.MetricsConfig, log logging.Logger) (prometheus.MetricsCollector, error) {
	if !cfg.Enabled {
		return prometheus.NewNoopCollector(), nil
	}
	return prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Namespace,
		Subsystem:            cfg.Subsystem,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
}

//Personal.AI order the ending
