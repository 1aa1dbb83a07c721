package task

import (
	"context"
	"fmt"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Client provides the Enqueuer used by the webhook binary to hand failed
// side effects to the worker.
var Client = fx.Module("asynq:client",
	fx.Provide(newClient, NewEnqueuer),
)

// Server runs the reconcile worker. Handlers register on the provided mux.
var Server = fx.Module("asynq:server",
	fx.Provide(asynq.NewServeMux),
	fx.Invoke(runServer),
)

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
}

func newClient(lc fx.Lifecycle, cfg *config.Config) (*asynq.Client, error) {
	client := asynq.NewClient(redisOpt(cfg))
	if err := client.Ping(); err != nil {
		zap.L().Error("[Asynq] ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return nil, fmt.Errorf("asynq ping: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return client, nil
}

// Enqueuer is the slice of asynq.Client the reconciliation engine needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type clientEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return &clientEnqueuer{client: client}
}

func (e *clientEnqueuer) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	zap.L().Debug("[Asynq] task enqueued",
		zap.String("task_id", info.ID),
		zap.String("task_type", info.Type),
		zap.String("queue", info.Queue))
	return info, nil
}

func serverConfig() asynq.Config {
	return asynq.Config{
		Concurrency:    10,
		Queues:         taskname.QueueWeights,
		RetryDelayFunc: asynq.DefaultRetryDelayFunc,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			zap.L().Error("[Asynq] task failed",
				zap.String("task_type", t.Type()),
				zap.Int("retried", retried),
				zap.Int("max_retry", maxRetry),
				zap.Error(err))
		}),
	}
}

func runServer(lc fx.Lifecycle, cfg *config.Config, mux *asynq.ServeMux) {
	srv := asynq.NewServer(redisOpt(cfg), serverConfig())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := srv.Start(mux); err != nil {
				zap.L().Error("[Asynq] failed to start worker", zap.Error(err))
				return err
			}
			zap.L().Info("[Asynq] worker started",
				zap.String("addr", cfg.Redis.Addr),
				zap.Any("queues", taskname.QueueWeights))
			return nil
		},
		OnStop: func(context.Context) error {
			srv.Shutdown()
			return nil
		},
	})
}
