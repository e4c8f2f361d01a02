package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client, time.Minute)
}

func TestRedisCache_SaveThenLoad(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	p := Presence{ID: "agent-1", EntityType: EntityAgent, Status: StatusOnline}
	require.NoError(t, cache.Save(ctx, p))

	got, ok, err := cache.Load(ctx, "agent-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p.Status, got.Status)
}

func TestRedisCache_LoadMiss(t *testing.T) {
	cache := newTestRedisCache(t)
	_, ok, err := cache.Load(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, Presence{ID: "agent-1", EntityType: EntityAgent}))
	require.NoError(t, cache.Delete(ctx, "agent-1"))

	_, ok, err := cache.Load(ctx, "agent-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManager_SetCache_WritesThroughOnSetStatusAndRemove(t *testing.T) {
	cache := newTestRedisCache(t)
	mgr := NewManager(DefaultConfig())
	mgr.SetCache(cache)

	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")
	_, ok, err := cache.Load(context.Background(), "agent-1")
	require.NoError(t, err)
	require.True(t, ok)

	mgr.Remove("agent-1")
	_, ok, err = cache.Load(context.Background(), "agent-1")
	require.NoError(t, err)
	require.False(t, ok)
}
