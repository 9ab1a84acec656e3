package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "staybook:summary:version"
	bumpChannel     = "staybook.summary.bump"
)

// CacheMetrics counts cache lookups by result (hit, miss, error).
type CacheMetrics interface {
	SummaryCacheRequest(result string)
}

// Cache wraps Redis based caching with versioning controls.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics CacheMetrics
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, metrics CacheMetrics) *Cache {
	return &Cache{client: client, ttl: ttl, metrics: metrics}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"staybook", "summary"}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// Fetch returns the cached JSON payload under key, running loader on a miss.
// A Redis read failure falls through to the loader without caching.
func (c *Cache) Fetch(ctx context.Context, key string, loader func(context.Context) (any, error)) ([]byte, error) {
	if loader == nil {
		return nil, errors.New("summary cache: loader required")
	}
	if c == nil || c.client == nil {
		return encode(ctx, loader)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.observe("hit")
		return payload, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.observe("error")
		return encode(ctx, loader)
	}
	c.observe("miss")
	raw, err := encode(ctx, loader)
	if err != nil {
		return nil, err
	}
	// a failed write only costs the next reader a reload
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	return raw, nil
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other processes
// until ctx is done.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					_ = c.client.Incr(ctx, cacheVersionKey).Err()
					continue
				}
				current, err := c.client.Get(ctx, cacheVersionKey).Int64()
				if err == nil && current >= ver {
					continue
				}
				_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
			}
		}
	}()
	return nil
}

func (c *Cache) observe(result string) {
	if c.metrics != nil {
		c.metrics.SummaryCacheRequest(result)
	}
}

func encode(ctx context.Context, loader func(context.Context) (any, error)) ([]byte, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}
