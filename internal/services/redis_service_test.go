package services

import (
	"context"
	"testing"
	"time"

	ierr "provider-subscription-api/internal/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisService(client), mr
}

func TestRedisLock(t *testing.T) {
	svc, mr := newTestRedis(t)
	ctx := context.Background()

	release, err := svc.Acquire(ctx, "provider:prov_1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:provider:prov_1"))

	_, err = svc.Acquire(ctx, "provider:prov_1", 10*time.Second)
	assert.True(t, ierr.IsConcurrentModification(err))

	other, err := svc.Acquire(ctx, "provider:prov_2", 10*time.Second)
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists("lock:provider:prov_1"))

	t.Run("expires", func(t *testing.T) {
		_, err := svc.Acquire(ctx, "provider:prov_3", time.Second)
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)
		release, err := svc.Acquire(ctx, "provider:prov_3", time.Second)
		require.NoError(t, err)
		release()
	})

	t.Run("stale release keeps new owner", func(t *testing.T) {
		stale, err := svc.Acquire(ctx, "provider:prov_4", time.Second)
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)
		_, err = svc.Acquire(ctx, "provider:prov_4", 10*time.Second)
		require.NoError(t, err)

		stale()
		assert.True(t, mr.Exists("lock:provider:prov_4"))
	})
}

func TestRedisRateLimit(t *testing.T) {
	svc, mr := newTestRedis(t)
	ctx := context.Background()

	ok, err := svc.Allow(ctx, "renewal:prov_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Allow(ctx, "renewal:prov_1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Hour + time.Second)
	ok, err = svc.Allow(ctx, "renewal:prov_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Allow(ctx, "renewal:prov_1", 0)
	require.NoError(t, err)
	assert.True(t, ok, "a zero window disables the limit")
}
