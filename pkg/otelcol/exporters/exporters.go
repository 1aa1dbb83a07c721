package exporters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vendas-platform/pkg/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

const dialTimeout = 10 * time.Second

// Protocol values accepted in OTEL.PROTOCOL.
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// NewClient picks the OTLP transport for cfg.Otel.Protocol. Anything other
// than grpc falls back to http.
func NewClient(cfg *config.Config) (otlptrace.Client, string) {
	switch strings.ToLower(strings.TrimSpace(cfg.Otel.Protocol)) {
	case ProtocolGRPC:
		return otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.Otel.Addr),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithCompressor("gzip"),
		), ProtocolGRPC
	default:
		return otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.Otel.Addr),
			otlptracehttp.WithInsecure(),
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		), ProtocolHTTP
	}
}

// New starts an OTLP span exporter for the configured collector.
func New(cfg *config.Config) (*otlptrace.Exporter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	client, protocol := NewClient(cfg)
	exp, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("otlp %s exporter %s: %w", protocol, cfg.Otel.Addr, err)
	}
	return exp, nil
}
