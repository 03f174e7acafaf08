package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsearch/internal/config"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient(config.RedisConfig{
		Addr:        mr.Addr(),
		DialTimeout: time.Second,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewClient(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestNewClient_ConnectionRefused(t *testing.T) {
	_, err := NewClient(config.RedisConfig{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
	}, nil)
	assert.Error(t, err)
}

func TestClient_SetGet(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute).Err())

	val, err := client.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	n, err := client.Exists(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Del(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	require.NoError(t, client.Del(ctx, "k").Err())

	n, err := client.Exists(ctx, "k").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_ClosedRejectsCommands(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Close())

	ctx := context.Background()
	assert.Error(t, client.Get(ctx, "k").Err())
	assert.Error(t, client.Set(ctx, "k", "v", 0).Err())
	assert.Error(t, client.HealthCheck(ctx))

	// Close is idempotent.
	assert.NoError(t, client.Close())
}
