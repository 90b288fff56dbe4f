package telemetry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/Raymond9734/invoice-dashboard/internal/config"
)

func TestInitTracing_WithoutEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	tp, shutdown, err := InitTracing(ctx, config.TracingConfig{
		ServiceName: "invoice-dashboard-test",
		SampleRatio: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(ctx, "op")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()
}
