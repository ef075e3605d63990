package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// DefaultCacheTTL bounds how long a cached QueryResult is served.
const DefaultCacheTTL = 10 * time.Minute

const cacheName = "query"

// ResultCache is the subset of a key/value cache the service needs.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service is the entry point used by the HTTP and CLI layers.
type Service interface {
	// Query validates q and returns the dashboard result.
	Query(ctx context.Context, q Query) (*QueryResult, error)
	// Validate checks q without computing.
	Validate(ctx context.Context, q Query) error
	// Meta describes the loaded dataset.
	Meta(ctx context.Context) Meta
}

type serviceImpl struct {
	engine   *Engine
	cache    ResultCache
	cacheTTL time.Duration
	logger   logging.Logger
	metrics  *prometheus.AppMetrics
	tracer   trace.Tracer
	group    singleflight.Group
}

// ServiceOption customises NewService.
type ServiceOption func(*serviceImpl)

// WithCache enables result caching; a nil cache disables it.
func WithCache(c ResultCache, ttl time.Duration) ServiceOption {
	return func(s *serviceImpl) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics records query metrics on m.
func WithMetrics(m *prometheus.AppMetrics) ServiceOption {
	return func(s *serviceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithServiceTracer sets the tracer for the per-query span.
func WithServiceTracer(t trace.Tracer) ServiceOption {
	return func(s *serviceImpl) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService wraps engine.
func NewService(engine *Engine, logger logging.Logger, opts ...ServiceOption) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		engine:   engine,
		cacheTTL: DefaultCacheTTL,
		logger:   logger.Named("analytics"),
		metrics:  prometheus.NewNoopAppMetrics(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Query(ctx context.Context, q Query) (*QueryResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "analytics.Query")
	defer span.End()
	log := s.logger.WithContext(ctx)

	if err := s.engine.Validate(q); err != nil {
		code := errors.GetCode(err)
		span.SetStatus(codes.Error, code.String())
		s.metrics.ValidationErrors.WithLabelValues(code.String()).Inc()
		prometheus.RecordQuery(s.metrics, "invalid", "engine", time.Since(start))
		log.Debug("query rejected", logging.String("code", code.String()), logging.Err(err))
		return nil, err
	}

	key, err := s.cacheKey(q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached QueryResult
		switch err := s.cache.Get(ctx, key, &cached); {
		case err == nil:
			prometheus.RecordCacheAccess(s.metrics, cacheName, true)
			prometheus.RecordQuery(s.metrics, "ok", "cache", time.Since(start))
			span.SetAttributes(attribute.String("query.source", "cache"))
			log.Debug("query served from cache", logging.String("key", key))
			return &cached, nil
		case errors.IsNotFound(err):
			prometheus.RecordCacheAccess(s.metrics, cacheName, false)
		default:
			s.metrics.CacheErrorsTotal.WithLabelValues(cacheName, "get").Inc()
			log.Warn("cache read failed", logging.String("key", key), logging.Err(err))
		}
	}

	// The shared computation outlives any single caller; each caller stops
	// waiting on its own context.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.engine.Compute(context.WithoutCancel(ctx), q)
	})
	var flight singleflight.Result
	select {
	case flight = <-ch:
	case <-ctx.Done():
		span.SetStatus(codes.Error, "abandoned")
		prometheus.RecordQuery(s.metrics, "abandoned", "engine", time.Since(start))
		log.Debug("query abandoned by caller", logging.Err(ctx.Err()))
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "query abandoned before completion")
	}
	v, err, shared := flight.Val, flight.Err, flight.Shared
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		prometheus.RecordQuery(s.metrics, "error", "engine", time.Since(start))
		prometheus.RecordError(s.metrics, "analytics", errors.GetCode(err).String())
		log.Error("query failed", logging.Err(err))
		return nil, err
	}
	res := v.(*QueryResult)
	span.SetAttributes(
		attribute.String("query.source", "engine"),
		attribute.Bool("query.shared", shared),
	)

	if s.cache != nil && !shared {
		if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
			s.metrics.CacheErrorsTotal.WithLabelValues(cacheName, "set").Inc()
			log.Warn("cache write failed", logging.String("key", key), logging.Err(err))
		}
	}

	elapsed := time.Since(start)
	prometheus.RecordQuery(s.metrics, "ok", "engine", elapsed)
	s.metrics.GroupsPerQuery.WithLabelValues().Observe(float64(len(res.Groups)))
	s.metrics.DetailRows.WithLabelValues().Observe(float64(len(res.Reviews.Rows)))
	log.Info("query computed",
		logging.Int("groups", len(res.Groups)),
		logging.Int("respondents", res.Summary.Respondents),
		logging.Int("detail_rows", len(res.Reviews.Rows)),
		logging.Duration(logging.FieldDuration, elapsed),
	)
	return res, nil
}

func (s *serviceImpl) Validate(_ context.Context, q Query) error {
	return s.engine.Validate(q)
}

func (s *serviceImpl) Meta(_ context.Context) Meta {
	return s.engine.Meta()
}

// cacheKey identifies q against the current dataset.  Queries that differ only
// in defaulted fields share a key.
func (s *serviceImpl) cacheKey(q Query) (string, error) {
	b, err := json.Marshal(q.Normalized(s.engine.Defaults()))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode query")
	}
	sum := sha256.Sum256(b)
	return fmt.Sprintf("%s:%s:%s", cacheName, s.engine.Dataset().Fingerprint(), hex.EncodeToString(sum[:])), nil
}

//Personal.AI order the ending
