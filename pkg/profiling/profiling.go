package profiling

import (
	"context"

	"vendas-platform/pkg/config"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("profiling", fx.Invoke(Start))

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func NewConfig(c *config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName: c.AppName,
		ServerAddress:   c.Pyroscope.Addr,
		ProfileTypes:    profileTypes,
		Tags: map[string]string{
			"service_name":    c.AppName,
			"service_version": c.AppVersion,
			"env":             c.AppEnv,
		},
	}
}

// Start pushes continuous profiles when PYROSCOPE.ADDR is set. A profiler
// that cannot start is logged and skipped.
func Start(lc fx.Lifecycle, c *config.Config) {
	if c.Pyroscope.Addr == "" {
		return
	}

	profiler, err := pyroscope.Start(NewConfig(c))
	if err != nil {
		zap.L().Error("[Pyroscope] failed to start", zap.String("addr", c.Pyroscope.Addr), zap.Error(err))
		return
	}
	zap.L().Info("[Pyroscope] profiling", zap.String("addr", c.Pyroscope.Addr))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return profiler.Stop() },
	})
}
