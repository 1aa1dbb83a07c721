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
	"vendas-platform/pkg/hashistack/servicediscover"
	"vendas-platform/pkg/health"
	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/otelcol"
	"vendas-platform/pkg/profiling"
	"vendas-platform/pkg/redis"
	"vendas-platform/pkg/sequence"
	"vendas-platform/pkg/server"
	"vendas-platform/pkg/task"
	"vendas-platform/services/bootstrap"
	"vendas-platform/services/checkout"
	"vendas-platform/services/commission"
	"vendas-platform/services/membership"
	"vendas-platform/services/paymentevent"
	"vendas-platform/services/reconciliation"
	"vendas-platform/services/sale"
)

func main() {
	opts := []fx.Option{
		configModule(),
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,
		sequence.Module,
		task.Client,
		otelcol.Module,
		profiling.Module,
		health.Module,
		bootstrap.Module,
		paymentevent.Module,
		sale.Module,
		commission.Module,
		membership.Module,
		reconciliation.Module,
		checkout.Module,
		server.ProvideHTTPServer,
		fx.Invoke(func(trace.TracerProvider) {}),
		fxLogger,
	}

	if os.Getenv("VAULT_ADDR") != "" {
		opts = append(opts, secretmanager.Module)
	}
	if os.Getenv("CONSUL_ADDR") != "" {
		opts = append(opts, servicediscover.Module)
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

// configModule reads from consul/etcd when REMOTE_CONFIG_PROVIDER is set,
// otherwise from config.yaml and the environment.
func configModule() fx.Option {
	if os.Getenv("REMOTE_CONFIG_PROVIDER") != "" {
		return config.RemoteModule
	}
	return config.Module
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
