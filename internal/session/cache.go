package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache - значение под фиксированным ключом, сериализованное в JSON
type JSONCache struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	timeout time.Duration
}

func NewJSONCache(client *redis.Client, key string, ttl, timeout time.Duration) *JSONCache {
	return &JSONCache{client: client, key: key, ttl: ttl, timeout: timeout}
}

// Get декодирует значение в dst. false, если в кеше пусто.
func (c *JSONCache) Get(ctx context.Context, dst any) (bool, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache %s: %w", c.key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cache %s: %w", c.key, err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", c.key, err)
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cache %s: %w", c.key, err)
	}
	return nil
}

func (c *JSONCache) Invalidate(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Del(ctx, c.key).Err()
}
