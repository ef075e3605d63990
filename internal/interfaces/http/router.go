// Package http exposes the dashboard API over gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/internal/interfaces/http/handlers"
	"github.com/turtacn/ReviewPulse/internal/interfaces/http/middleware"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// RouterConfig holds all dependencies needed to build the HTTP router.
type RouterConfig struct {
	// Handlers (nil handlers are skipped)
	Dashboard *handlers.DashboardHandler
	Health    *handlers.HealthHandler

	// Middleware (nil disables the corresponding middleware)
	RateLimiter *middleware.KeyedLimiter
	RateLimit   middleware.RateLimitConfig
	CORS        *middleware.CORSConfig
	Logging     middleware.LoggingConfig

	// Infrastructure
	Logger         logging.Logger
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler
	MetricsPath    string
	// Mode is the gin mode; empty keeps the process-wide setting.
	Mode string
}

// NewRouter wires the middleware chain and the routes:
//
//	GET  /healthz, /readyz, /healthz/detail
//	GET  <MetricsPath>
//	POST /api/v1/dashboard/query
//	POST /api/v1/dashboard/validate
//	GET  /api/v1/dashboard/meta
//
// Middleware order is Recovery, RequestID, Logging, Metrics, CORS, RateLimit.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = prometheus.NewNoopAppMetrics()
	}
	log := cfg.Logger.Named("http")

	r := gin.New()
	r.Use(
		middleware.Recovery(log, cfg.Metrics),
		middleware.RequestID(),
		middleware.RequestLogging(log, cfg.Logging),
		middleware.Metrics(cfg.Metrics),
	)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	v1 := r.Group("/api/v1")
	if cfg.Dashboard != nil {
		cfg.Dashboard.RegisterRoutes(v1)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code:      string(errors.ErrCodeNotFound),
			Message:   "route not found",
			Detail:    c.Request.Method + " " + c.Request.URL.Path,
			RequestID: logging.RequestIDFromContext(c.Request.Context()),
		})
	})

	return r
}

//Personal.AI order the ending
