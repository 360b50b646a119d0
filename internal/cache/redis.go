package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "github.com/fekuna/omnipos-catalog-service/pkg/cache"
	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client *pkgcache.RedisClient
}

func NewRedisBackend(client *pkgcache.RedisClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Client.Set(ctx, key, value, ttl).Err()
}
