package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLockAcquireRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	lock, err := Acquire(ctx, client, "staybook:lock:test", time.Minute)
	require.NoError(t, err)

	_, err = Acquire(ctx, client, "staybook:lock:test", time.Minute)
	require.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(ctx))
	require.False(t, mr.Exists("staybook:lock:test"))

	again, err := Acquire(ctx, client, "staybook:lock:test", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLockReleaseKeepsForeignOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	lock, err := Acquire(ctx, client, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, mr.Set("k", "someone-else"))

	require.NoError(t, lock.Release(ctx))
	require.True(t, mr.Exists("k"))
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
