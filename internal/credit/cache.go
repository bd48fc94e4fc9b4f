package credit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache adapts a go-redis client to the BalanceCache interface.
// A nil client is allowed and behaves like an always-miss cache, the
// same graceful degradation the rest of the service applies when
// Redis is unreachable at startup.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache { return &RedisCache{Client: client} }

// Get returns the cached value and whether it was present. Backend
// errors are indistinguishable from misses on purpose: the ledger
// falls back to the user store either way.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	if r.Client == nil {
		return "", false
	}
	v, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores a value with the given TTL; failures are ignored.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if r.Client == nil {
		return
	}
	_ = r.Client.Set(ctx, key, value, ttl).Err()
}

// Delete removes keys; failures are ignored. A failed delete only
// means the entry lives until its TTL expires.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) {
	if r.Client == nil || len(keys) == 0 {
		return
	}
	_ = r.Client.Del(ctx, keys...).Err()
}
