package task

import (
	"testing"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/taskname"

	"github.com/stretchr/testify/require"
)

func TestServerConfigPrefersReconcileQueue(t *testing.T) {
	cfg := serverConfig()

	require.Equal(t, 10, cfg.Concurrency)
	require.Greater(t, cfg.Queues[taskname.QueueReconcile], cfg.Queues[taskname.QueueDefault])
	require.NotNil(t, cfg.ErrorHandler)
}

func TestRedisOptFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Addr = "redis:6379"
	cfg.Redis.DB = 2
	cfg.Redis.PoolSize = 5

	opt := redisOpt(cfg)
	require.Equal(t, "redis:6379", opt.Addr)
	require.Equal(t, 2, opt.DB)
	require.Equal(t, 5, opt.PoolSize)
}
