package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

const collectionTTL = 5 * time.Minute

// CollectionKey is the cache key for an entity's list cache.
func CollectionKey(entity string) string {
	return "hrhub:collection:" + entity
}

// GetCollection loads the cached unfiltered list for an entity into
// dest and reports whether there was a hit. A nil cache always misses.
func (c *Cache) GetCollection(ctx context.Context, entity string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.Get(ctx, CollectionKey(entity), dest) == nil
}

// SetCollection stores an entity's unfiltered list under its
// collection key. A failed write is logged and swallowed, the entry is
// rebuilt on the next miss.
func (c *Cache) SetCollection(ctx context.Context, entity string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.Set(ctx, CollectionKey(entity), value, collectionTTL); err != nil {
		slog.Warn("cache collection set failed", "entity", entity, "error", err)
	}
}

// InvalidateCollection drops the list cache for an entity. It is
// called only after a confirmed mutation; a failed invalidation is
// logged and swallowed, the cache entry expires on its own TTL.
func (c *Cache) InvalidateCollection(ctx context.Context, entity string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.Delete(ctx, CollectionKey(entity)); err != nil {
		slog.Warn("cache invalidation failed", "entity", entity, "error", err)
	}
}
