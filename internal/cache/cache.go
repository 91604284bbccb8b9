package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scopes group cached views that are invalidated together.
const (
	ScopeTickets    = "tickets"
	ScopeContacts   = "contacts"
	ScopeTasks      = "tasks"
	ScopeActivities = "activities"
)

// ViewCache stores read-side view-models keyed by scope and query.
// Invalidating a scope makes every entry written before it unreachable.
type ViewCache interface {
	Get(ctx context.Context, scope, key string, dst any) (bool, error)
	Set(ctx context.Context, scope, key string, value any) error
	Invalidate(ctx context.Context, scope string) error
}

// RedisCache is a ViewCache backed by Redis. Each scope has a version counter;
// entries are keyed by version so invalidation is a single INCR.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps a redis client.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "crm"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) versionKey(scope string) string {
	return c.prefix + ":ver:" + scope
}

func (c *RedisCache) entryKey(scope string, version int64, key string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", c.prefix, scope, version, key)
}

func (c *RedisCache) version(ctx context.Context, scope string) (int64, error) {
	raw, err := c.client.Get(ctx, c.versionKey(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *RedisCache) Get(ctx context.Context, scope, key string, dst any) (bool, error) {
	version, err := c.version(ctx, scope)
	if err != nil {
		return false, err
	}
	raw, err := c.client.Get(ctx, c.entryKey(scope, version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", scope, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, scope, key string, value any) error {
	version, err := c.version(ctx, scope)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", scope, err)
	}
	return c.client.Set(ctx, c.entryKey(scope, version, key), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, scope string) error {
	return c.client.Incr(ctx, c.versionKey(scope)).Err()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, string, any) error         { return nil }
func (Noop) Invalidate(context.Context, string) error               { return nil }

// Key derives a stable cache key from a query description.
func Key(parts ...any) string {
	raw, err := json.Marshal(parts)
	if err != nil {
		raw = []byte(fmt.Sprint(parts...))
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
