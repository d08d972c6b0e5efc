// internal/observability/otel.go
package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"coursemarket/internal/logger"
)

// InitTracing installs a global tracer provider exporting over OTLP/HTTP.
// The exporter endpoint comes from the standard OTEL_EXPORTER_OTLP_* variables.
// When disabled, the returned shutdown func is a no-op and the global no-op
// provider stays in place.
func InitTracing(ctx context.Context, log *logger.Logger, enabled bool, serviceName, env string) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !enabled {
		return noop
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		log.Warn("otel exporter init failed (continuing without tracing)", "error", err)
		return noop
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", strings.TrimSpace(serviceName)),
		attribute.String("deployment.environment", strings.TrimSpace(env)),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info("otel tracing enabled", "service", serviceName)
	return tp.Shutdown
}
