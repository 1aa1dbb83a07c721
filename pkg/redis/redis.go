package redis

import (
	"context"
	"time"

	"vendas-platform/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis",
	fx.Provide(New),
)

const (
	readyAttempts = 5
	readyDelay    = 3 * time.Second
)

func Options(c *config.Config) *redis.Options {
	return &redis.Options{
		Addr:        c.Redis.Addr,
		Password:    c.Redis.Password,
		DB:          c.Redis.DB,
		PoolSize:    c.Redis.PoolSize,
		PoolTimeout: c.Redis.PoolTimeout,
	}
}

type pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// waitReady pings until redis answers or attempts run out, returning the
// last error.
func waitReady(ctx context.Context, p pinger, attempts int, delay time.Duration, log *zap.Logger) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = p.Ping(ctx).Err(); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn("[Redis] not ready, retrying", zap.Int("attempt", i), zap.Duration("delay", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// New never fails the boot. The sequence generator and health check surface
// an unreachable redis on their own.
func New(lc fx.Lifecycle, c *config.Config) *redis.Client {
	log := zap.L().With(zap.String("addr", c.Redis.Addr), zap.Int("db", c.Redis.DB))
	rdb := redis.NewClient(Options(c))

	if err := waitReady(context.Background(), rdb, readyAttempts, readyDelay, log); err != nil {
		log.Error("[Redis] unreachable, commands will fail until it recovers", zap.Error(err))
	} else {
		log.Info("[Redis] connected", zap.Int("pool_size", c.Redis.PoolSize))
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return rdb.Close() },
	})
	return rdb
}
