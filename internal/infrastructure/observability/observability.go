// Package observability installs the OpenTelemetry tracer provider used by the
// HTTP middleware and the storage adapter.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"r2-dashboard/internal/config"
)

// TracerName is the instrumentation scope of spans opened by the dashboard itself.
const TracerName = "r2-dashboard"

// Shutdown flushes pending spans and stops the exporter.
type Shutdown func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Tracer returns the dashboard tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Setup always installs W3C trace-context propagation so incoming trace ids reach
// the request logs. Spans are exported only when ENABLE_TRACING is set and an
// OTLP endpoint is configured.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Shutdown, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.EnableTracing {
		log.Info().Msg("tracing disabled")
		return noopShutdown, nil
	}
	if cfg.OTLPEndpoint == "" {
		log.Warn().Msg("ENABLE_TRACING is set without OTEL_EXPORTER_OTLP_ENDPOINT; tracing disabled")
		return noopShutdown, nil
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(provider)
	log.Info().
		Str("endpoint", cfg.OTLPEndpoint).
		Float64("sample_ratio", sampleRatio(cfg.TraceSample)).
		Msg("tracing enabled")

	return func(ctx context.Context) error {
		return errors.Join(provider.ForceFlush(ctx), provider.Shutdown(ctx))
	}, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.TraceSample)))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// sampleRatio maps an unset or out-of-range TRACE_SAMPLE_RATIO to 1.
func sampleRatio(r float64) float64 {
	if r <= 0 || r > 1 {
		return 1
	}
	return r
}
