package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is an optional write-through backing store for presence state, so
// a multi-instance deployment can share presence across processes instead
// of each one keeping its own isolated in-memory map. The in-process map
// in Manager remains the fast path; Cache only needs to survive a process
// restart or be visible to a sibling instance.
type Cache interface {
	Save(ctx context.Context, p Presence) error
	Delete(ctx context.Context, id string) error
}

// RedisCache implements Cache against a Redis key per entity, TTL'd to
// the configured AwayTimeout so a crashed instance's entries expire on
// their own rather than going stale forever.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps an existing go-redis client; ttl should track the
// owning Manager's Config.AwayTimeout.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "openclaw:presence:"}
}

func (c *RedisCache) key(id string) string { return c.prefix + id }

func (c *RedisCache) Save(ctx context.Context, p Presence) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(p.ID), data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

// Load fetches a single cached presence, reporting (zero, false, nil) on
// a cache miss rather than treating it as an error.
func (c *RedisCache) Load(ctx context.Context, id string) (Presence, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return Presence{}, false, nil
	}
	if err != nil {
		return Presence{}, false, err
	}
	var p Presence
	if err := json.Unmarshal(data, &p); err != nil {
		return Presence{}, false, err
	}
	return p, true, nil
}
