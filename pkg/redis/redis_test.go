package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPinger struct {
	failures int
	calls    int
}

func (s *stubPinger) Ping(ctx context.Context) *redis.StatusCmd {
	s.calls++
	cmd := redis.NewStatusCmd(ctx)
	if s.calls <= s.failures {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func TestWaitReadyRecovers(t *testing.T) {
	p := &stubPinger{failures: 2}
	require.NoError(t, waitReady(context.Background(), p, 5, 0, zap.NewNop()))
	require.Equal(t, 3, p.calls)
}

func TestWaitReadyGivesUp(t *testing.T) {
	p := &stubPinger{failures: 10}
	err := waitReady(context.Background(), p, 3, 0, zap.NewNop())
	require.EqualError(t, err, "connection refused")
	require.Equal(t, 3, p.calls)
}
