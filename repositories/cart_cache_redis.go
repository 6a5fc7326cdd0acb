package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

type RedisCartCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCartCache namespaces keys under prefix. A zero ttl keeps entries
// until they are deleted.
func NewRedisCartCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCartCache {
	return &RedisCartCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCartCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return value, nil
}

func (r *RedisCartCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (r *RedisCartCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
