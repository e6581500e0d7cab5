package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bigfive/internal/narrative/models"
	"bigfive/pkg/platform/sentinel"
)

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache shares narratives and locks between server instances.
type RedisCache struct {
	client   *redis.Client
	entryTTL time.Duration
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithEntryTTL expires cached narratives. Zero keeps them forever.
func WithEntryTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		c.entryTTL = ttl
	}
}

// NewRedis creates a cache over client.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, hash string) (models.Entry, error) {
	raw, err := c.client.Get(ctx, EntryKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Entry{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("get narrative: %w", err)
	}
	var e models.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Entry{}, fmt.Errorf("decode narrative: %w", err)
	}
	return e, nil
}

func (c *RedisCache) Put(ctx context.Context, hash string, e models.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode narrative: %w", err)
	}
	if err := c.client.Set(ctx, EntryKey(hash), raw, c.entryTTL).Err(); err != nil {
		return fmt.Errorf("put narrative: %w", err)
	}
	return nil
}

// AcquireLock uses SET NX PX so exactly one caller wins until the TTL lapses.
func (c *RedisCache) AcquireLock(ctx context.Context, hash, owner string, ttl time.Duration) (bool, error) {
	err := c.client.SetArgs(ctx, LockKey(hash), owner, redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire narrative lock: %w", err)
	}
	return true, nil
}

func (c *RedisCache) ReleaseLock(ctx context.Context, hash, owner string) error {
	if err := releaseScript.Run(ctx, c.client, []string{LockKey(hash)}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release narrative lock: %w", err)
	}
	return nil
}
