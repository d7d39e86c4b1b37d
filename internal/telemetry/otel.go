// Package telemetry installs the OpenTelemetry tracer and meter providers
// that export over OTLP/HTTP.  Exporter endpoints are configured through
// the standard OTEL_EXPORTER_OTLP_* environment variables.
package telemetry

import (
    "context"
    "errors"
    "time"

    "go.opentelemetry.io/contrib/instrumentation/runtime"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
    "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
    "go.opentelemetry.io/otel/propagation"
    sdkmetric "go.opentelemetry.io/otel/sdk/metric"
    "go.opentelemetry.io/otel/sdk/resource"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
    semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

    "github.com/iliyamo/todo-api/internal/config"
)

// ShutdownFunc flushes and stops whatever Setup started.
type ShutdownFunc func(context.Context) error

// Setup installs the W3C trace context and baggage propagator, and global
// providers when telemetry is enabled.  With telemetry disabled the no-op
// providers stay in place.
func Setup(ctx context.Context, cfg config.TelemetryConfig, env string) (ShutdownFunc, error) {
    otel.SetTextMapPropagator(Propagator())
    if !cfg.Enabled {
        return func(context.Context) error { return nil }, nil
    }

    res := resource.NewWithAttributes(
        semconv.SchemaURL,
        semconv.ServiceNameKey.String(cfg.ServiceName),
        semconv.DeploymentEnvironmentKey.String(env),
    )

    tp, err := tracerProvider(ctx, res)
    if err != nil {
        return nil, err
    }
    mp, err := meterProvider(ctx, res)
    if err != nil {
        _ = tp.Shutdown(ctx)
        return nil, err
    }
    otel.SetTracerProvider(tp)
    otel.SetMeterProvider(mp)

    if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
        _ = tp.Shutdown(ctx)
        _ = mp.Shutdown(ctx)
        return nil, err
    }

    return func(ctx context.Context) error {
        return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
    }, nil
}

func tracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
    exp, err := otlptracehttp.New(ctx)
    if err != nil {
        return nil, err
    }
    return sdktrace.NewTracerProvider(
        sdktrace.WithBatcher(exp),
        sdktrace.WithResource(res),
    ), nil
}

func meterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
    exporter, err := otlpmetrichttp.New(ctx)
    if err != nil {
        return nil, err
    }
    reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))
    return sdkmetric.NewMeterProvider(
        sdkmetric.WithReader(reader),
        sdkmetric.WithResource(res),
    ), nil
}

// Propagator reads and writes the traceparent, tracestate and baggage headers.
func Propagator() propagation.TextMapPropagator {
    return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}
