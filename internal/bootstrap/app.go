// Package bootstrap assembles a running ReviewPulse process from its
// configuration.  Both the CLI and the API server binary build on App.
package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/redis"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/dataset"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/tracing"
	httpapi "github.com/turtacn/ReviewPulse/internal/interfaces/http"
	"github.com/turtacn/ReviewPulse/internal/interfaces/http/handlers"
	"github.com/turtacn/ReviewPulse/internal/interfaces/http/middleware"
)

const tracerName = "github.com/turtacn/ReviewPulse"

// rateLimitIdleTTL is how long an idle client keeps its token bucket.
const rateLimitIdleTTL = 5 * time.Minute

// App owns every long-lived component of the process.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Dataset   *review.Dataset
	Engine    *analytics.Engine
	Service   analytics.Service
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Tracing   *tracing.Provider
	// Cache is nil when redis is disabled or unreachable at start.
	Cache redis.Cache

	version  string
	checkers []handlers.HealthChecker
	closers  []func(context.Context) error
}

// New loads the dataset and wires the analytics service.  On error every
// component opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, log logging.Logger, version string) (app *App, err error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	a := &App{Config: cfg, Logger: log, version: version}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.Tracing, err = tracing.NewProvider(ctx, TracingConfig(cfg.Tracing, version), log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Tracing.Shutdown)

	a.Collector, err = NewCollector(cfg.Metrics, log)
	if err != nil {
		return nil, err
	}
	a.Metrics = prometheus.NewAppMetrics(a.Collector)

	src, closeSource, err := dataset.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return closeSource() })
	if sqlSrc, ok := src.(*dataset.SQLSource); ok {
		a.checkers = append(a.checkers, handlers.CheckerFunc(sqlSrc.Name(), func(ctx context.Context) error {
			return sqlSrc.DB().PingContext(ctx)
		}))
	}

	a.Dataset, err = dataset.Load(ctx, src, a.Metrics, log)
	if err != nil {
		return nil, err
	}

	engineOpts, err := EngineOptions(cfg.Dataset, cfg.Analytics)
	if err != nil {
		return nil, err
	}
	tracer := a.Tracing.Tracer(tracerName)
	a.Engine = analytics.NewEngine(a.Dataset, append(engineOpts, analytics.WithTracer(tracer))...)

	svcOpts := []analytics.ServiceOption{
		analytics.WithMetrics(a.Metrics),
		analytics.WithServiceTracer(tracer),
	}
	if cfg.Redis.Enabled {
		if a.Cache = a.openCache(cfg.Redis); a.Cache != nil {
			svcOpts = append(svcOpts, analytics.WithCache(a.Cache, cfg.Analytics.CacheTTL))
		}
	}
	a.Service = analytics.NewService(a.Engine, log, svcOpts...)
	return a, nil
}

// openCache connects the result cache.  An unreachable redis leaves the
// service uncached rather than failing start-up.
func (a *App) openCache(cfg config.RedisConfig) redis.Cache {
	client, err := redis.NewClient(RedisConfig(cfg), a.Logger)
	if err != nil {
		a.Logger.Warn("Result cache unavailable, continuing without cache", logging.Err(err))
		prometheus.RecordError(a.Metrics, "cache", "connect")
		return nil
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })

	cache := redis.NewRedisCache(client, a.Logger,
		redis.WithPrefix(cfg.KeyPrefix),
		redis.WithDefaultTTL(cfg.DefaultTTL),
	)
	a.checkers = append(a.checkers, handlers.CheckerFunc("redis", cache.Ping))
	return cache
}

// Router builds the HTTP handler for the dashboard API.
func (a *App) Router() *gin.Engine {
	cfg := a.Config
	rc := httpapi.RouterConfig{
		Dashboard: handlers.NewDashboardHandler(a.Service, a.Logger, cfg.Server.MaxBodySize),
		Health:    handlers.NewHealthHandler(a.version, a.checkers...),
		Logging:   middleware.DefaultLoggingConfig(),
		Logger:    a.Logger,
		Metrics:   a.Metrics,
		Mode:      cfg.Server.Mode,
	}
	if cfg.Metrics.Enabled {
		rc.MetricsHandler = a.Collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	if cfg.RateLimit.Enabled {
		rc.RateLimit = middleware.DefaultRateLimitConfig()
		rc.RateLimit.RequestsPerSecond = cfg.RateLimit.RPS
		rc.RateLimit.BurstSize = cfg.RateLimit.Burst
		rc.RateLimiter = middleware.NewKeyedLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, rateLimitIdleTTL)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORSOrigins
		cors.AllowWildcard = true
		rc.CORS = &cors
	}
	return httpapi.NewRouter(rc)
}

// Server wraps Router in a listener configured from the server section.
func (a *App) Server() *httpapi.Server {
	s := a.Config.Server
	return httpapi.NewServer(httpapi.ServerConfig{
		Addr:            s.Addr(),
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}, a.Router(), a.Logger)
}

// Close releases components in reverse order of acquisition and returns the
// first error.
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

//Personal.AI order the ending
