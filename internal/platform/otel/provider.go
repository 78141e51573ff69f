// Package otel configures opt-in OpenTelemetry tracing for archive services.
package otel

import (
	"context"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Environment variables read by Setup.
const (
	EnvEndpoint    = "TOURNAMENT_ARCHIVE_OTEL_ENDPOINT"
	EnvEnabled     = "TOURNAMENT_ARCHIVE_OTEL_ENABLED"
	EnvSampleRatio = "TOURNAMENT_ARCHIVE_OTEL_SAMPLE_RATIO"
)

// settings is the tracing configuration resolved from the environment.
type settings struct {
	endpoint string
	ratio    float64
}

func (s settings) enabled() bool { return s.endpoint != "" }

// settingsFromEnv resolves tracing settings. An empty endpoint or an explicit
// "false" disables tracing. Ratios outside [0, 1) sample every trace.
func settingsFromEnv() settings {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(EnvEnabled)), "false") {
		return settings{}
	}
	s := settings{endpoint: strings.TrimSpace(os.Getenv(EnvEndpoint)), ratio: 1}
	if raw := strings.TrimSpace(os.Getenv(EnvSampleRatio)); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil && ratio >= 0 && ratio < 1 {
			s.ratio = ratio
		}
	}
	return s
}

func (s settings) sampler() sdktrace.Sampler {
	if s.ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.ratio))
}

// Setup registers a global tracer provider exporting to the configured OTLP
// HTTP endpoint. When tracing is disabled nothing is registered and the
// returned shutdown is a no-op. Callers defer shutdown to flush spans.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	cfg := settingsFromEnv()
	if !cfg.enabled() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithHost(),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
