// Package tracing configures the OpenTelemetry tracer provider that backs the
// analytics stage spans.
package tracing

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Config mirrors the tracing section of the application config.
type Config struct {
	Enabled        bool
	Endpoint       string // host:port or a full http(s) URL
	Insecure       bool
	SampleRatio    float64
	ServiceName    string
	ServiceVersion string
}

// Provider owns the process tracer provider.
type Provider struct {
	tp       trace.TracerProvider
	sdk      *sdktrace.TracerProvider
	logger   logging.Logger
	shutdown sync.Once
}

// NewProvider builds an OTLP/HTTP exporting provider and installs it as the
// global otel provider.  A disabled config yields a no-op provider and leaves
// the global untouched.
func NewProvider(ctx context.Context, cfg Config, log logging.Logger) (*Provider, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if !cfg.Enabled {
		return &Provider{tp: noop.NewTracerProvider(), logger: log}, nil
	}

	opts := []otlptracehttp.Option{}
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create otlp exporter").WithDetail(cfg.Endpoint)
	}

	p := newProvider(cfg, log, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(p.sdk)
	log.Info("Tracing enabled",
		logging.String("endpoint", cfg.Endpoint),
		logging.Float64("sample_ratio", cfg.SampleRatio),
	)
	return p, nil
}

// NewProviderWithExporter builds a provider that exports synchronously to
// exp.  It does not touch the global provider.
func NewProviderWithExporter(cfg Config, exp sdktrace.SpanExporter, log logging.Logger) *Provider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return newProvider(cfg, log, sdktrace.WithSyncer(exp))
}

func newProvider(cfg Config, log logging.Logger, export sdktrace.TracerProviderOption) *Provider {
	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	sdk := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	return &Provider{tp: sdk, sdk: sdk, logger: log}
}

// Tracer returns a named tracer from the provider.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool { return p.sdk != nil }

// Shutdown flushes pending spans.  Calls after the first are no-ops.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdown.Do(func() {
		if p.sdk == nil {
			return
		}
		if err = p.sdk.Shutdown(ctx); err != nil {
			p.logger.Warn("Tracer provider shutdown failed", logging.Err(err))
			err = errors.Wrap(err, errors.ErrCodeInternal, "tracer shutdown failed")
		}
	})
	return err
}

//Personal.AI order the ending
