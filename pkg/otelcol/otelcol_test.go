package otelcol

import (
	"context"
	"testing"

	"vendas-platform/pkg/config"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"
)

func TestNewTracerProviderDisabledWithoutAddr(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	tp, err := NewTracerProvider(lc, &config.Config{})
	require.NoError(t, err)

	_, isSDK := tp.(*trace.TracerProvider)
	require.False(t, isSDK)
}

func TestProvideTraceExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := ProvideTrace(exporter, defaultTraceProviderOption(&config.Config{AppName: "vendas-billing"})...)

	_, span := tp.Tracer("test").Start(context.Background(), "reconcile")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "reconcile", spans[0].Name)
}
