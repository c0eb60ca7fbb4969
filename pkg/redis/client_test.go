package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/pkg/config"
)

func TestClient_RoundTripThroughMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := New(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	instrumented := NewMetricsClient(client)

	require.NoError(t, instrumented.Set(ctx, "guild:1", "cfg", time.Minute))
	value, err := instrumented.Get(ctx, "guild:1")
	require.NoError(t, err)
	assert.Equal(t, "cfg", value)

	require.NoError(t, instrumented.Delete(ctx, "guild:1"))
	_, err = instrumented.Get(ctx, "guild:1")
	assert.ErrorIs(t, err, goredis.Nil)

	assert.NoError(t, client.HealthCheck(ctx))
}

func TestNew_FailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestMetricsClient_CountsMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := New(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	before := testutil.ToFloat64(kvOps.WithLabelValues("get", "miss"))
	_, err = NewMetricsClient(client).Get(ctx, "absent")
	assert.ErrorIs(t, err, goredis.Nil)
	assert.Equal(t, before+1, testutil.ToFloat64(kvOps.WithLabelValues("get", "miss")))
}
