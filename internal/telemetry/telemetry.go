// Package telemetry configures OpenTelemetry tracing for the server.
package telemetry

import (
	"context"

	"github.com/dmitrijs2005/companyhub/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Options selects where spans are exported. An empty Endpoint disables export.
type Options struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
}

// Setup installs a global tracer provider exporting over OTLP/gRPC. Exporter
// failures are logged and tracing stays disabled; the server keeps running.
func Setup(ctx context.Context, opts Options, l logging.Logger) ShutdownFunc {
	if opts.Endpoint == "" {
		l.Debug(ctx, "tracing disabled, no OTLP endpoint configured")
		return noop
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		l.Error(ctx, "otel exporter error", "error", err)
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(opts.ServiceName)))
	if err != nil {
		l.Warn(ctx, "otel resource error", "error", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	l.Info(ctx, "tracing enabled", "endpoint", opts.Endpoint)
	return provider.Shutdown
}
