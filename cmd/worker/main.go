package main

import (
	"log"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/db"
	"vendas-platform/pkg/gen"
	"vendas-platform/pkg/hashistack/secretmanager"
	"vendas-platform/pkg/health"
	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/otelcol"
	"vendas-platform/pkg/profiling"
	"vendas-platform/pkg/server"
	"vendas-platform/pkg/task"
	"vendas-platform/services/commission"
	"vendas-platform/services/membership"
	"vendas-platform/services/paymentevent"
	"vendas-platform/services/reconciliation"
	"vendas-platform/services/sale"
)

// The worker retries commission and membership creation queued by the
// webhook service. It serves only /health and /metrics over HTTP.
func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		otelcol.Module,
		profiling.Module,
		health.Module,
		task.Server,
		paymentevent.Module,
		sale.Module,
		commission.Module,
		membership.Module,
		reconciliation.WorkerModule,
		server.ProvideHTTPServer,
		fx.Invoke(func(trace.TracerProvider) {}),
		fxLogger,
	}

	if os.Getenv("VAULT_ADDR") != "" {
		opts = append(opts, secretmanager.Module)
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
