// Package telemetry wires OpenTelemetry tracing and Prometheus metrics for
// the runtime: provider call latency, memory tier sizes, and orchestrator
// task throughput.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig controls where spans are exported.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	// OTLPEndpoint is the collector address (host:port). Empty exports
	// spans to stdout instead, which is convenient for local runs and
	// tests that want tracing wired without standing up a collector.
	OTLPEndpoint string
	Insecure     bool
}

// Setup installs a global TracerProvider per cfg and returns a shutdown
// function the caller must defer. Disabled configs return a no-op
// shutdown.
func Setup(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	if cfg.OTLPEndpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "openclaw"
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the named tracer from the global provider, usable
// whether or not Setup installed a real exporter.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan is a thin convenience wrapper over Tracer for call sites:
// `ctx, span := telemetry.StartSpan(ctx, "rag.loop.run")`.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer("github.com/openclaw/core").Start(ctx, name, opts...)
}
