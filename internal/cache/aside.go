package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/observability"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var group singleflight.Group

// Aside loads key into dest, calling fetch to populate dest on a miss and
// storing the result for ttl. Concurrent misses on one key share a single fetch.
// Without Redis, fetch is called directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	c := GetClient()
	if c == nil {
		return fetch()
	}

	raw, err := c.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		// Corrupt entry: refetch below.
	case errors.Is(err, redis.Nil):
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
		return fetch()
	}
	observability.CacheLookups.WithLabelValues("miss").Inc()

	data, err, _ := group.Do(key, func() (any, error) {
		if err := fetch(); err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(dest)
		if err != nil {
			return nil, fmt.Errorf("encode cache entry %s: %w", key, err)
		}
		if err := c.Set(ctx, key, encoded, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err.Error())
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data.([]byte), dest)
}

// Invalidate removes keys from the cache.
func Invalidate(ctx context.Context, keys ...string) {
	if c := GetClient(); c != nil && len(keys) > 0 {
		if err := c.Del(ctx, keys...).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err.Error())
		}
	}
}
