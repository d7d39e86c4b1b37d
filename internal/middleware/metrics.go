package middleware

import (
    "log"
    "time"

    "github.com/labstack/echo/v4"
    "go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/iliyamo/todo-api/internal/middleware"

// Tracing starts a server span per request, continuing any trace context
// carried by the incoming headers.
func Tracing(service string, opts ...otelecho.Option) echo.MiddlewareFunc {
    return otelecho.Middleware(service, opts...)
}

// Telemetry records request count and duration by method, route and
// status.  It uses the global meter provider, so it costs next to nothing
// until telemetry.Setup installs a real one.
func Telemetry() echo.MiddlewareFunc {
    return requestMetrics(otel.Meter(instrumentationName))
}

// requestMetrics degrades to a pass-through for any instrument the meter
// fails to create.
func requestMetrics(meter metric.Meter) echo.MiddlewareFunc {
    requestCounter, err := meter.Int64Counter(
        "http_requests_total",
        metric.WithDescription("Total number of HTTP requests"),
    )
    if err != nil {
        log.Printf("telemetry: create request counter: %v", err)
    }
    requestDuration, err := meter.Float64Histogram(
        "http_request_duration_seconds",
        metric.WithDescription("HTTP request duration in seconds"),
        metric.WithUnit("s"),
    )
    if err != nil {
        log.Printf("telemetry: create request duration histogram: %v", err)
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            if err := next(c); err != nil {
                // Let echo write the response now so the status below is final.
                c.Error(err)
            }

            ctx := c.Request().Context()
            attrs := metric.WithAttributes(
                attribute.String("method", c.Request().Method),
                attribute.String("route", c.Path()),
                attribute.Int("status_code", c.Response().Status),
            )
            if requestCounter != nil {
                requestCounter.Add(ctx, 1, attrs)
            }
            if requestDuration != nil {
                requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
            }
            return nil
        }
    }
}
