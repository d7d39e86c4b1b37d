package telemetry

import (
    "context"
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/baggage"
    "go.opentelemetry.io/otel/propagation"
    "go.opentelemetry.io/otel/trace"

    "github.com/iliyamo/todo-api/internal/config"
)

func TestSetupDisabledIsNoop(t *testing.T) {
    shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
    require.NoError(t, err)
    require.NotNil(t, shutdown)
    assert.NoError(t, shutdown(context.Background()))
}

func TestSetupInstallsPropagator(t *testing.T) {
    _, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
    require.NoError(t, err)

    h := http.Header{}
    h.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
    h.Set("baggage", "tenant=acme")

    ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(h))
    sc := trace.SpanContextFromContext(ctx)
    assert.True(t, sc.IsValid())
    assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
    assert.Equal(t, "acme", baggage.FromContext(ctx).Member("tenant").Value())
}
