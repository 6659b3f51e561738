package idempotent

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Strategy = (*RedisStrategy)(nil)

// RedisStrategy 基于 SETNX 的幂等策略，多实例部署时共享
type RedisStrategy struct {
	client  redis.Cmdable
	expires time.Duration
}

func (r *RedisStrategy) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+key, 1, r.expires).Result()
	if err != nil {
		return false, fmt.Errorf("[educafric] failed to claim idempotent key %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisStrategy) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("[educafric] failed to release idempotent key %s: %w", key, err)
	}
	return nil
}

func NewRedisStrategy(client redis.Cmdable, expires time.Duration) *RedisStrategy {
	return &RedisStrategy{
		client:  client,
		expires: expires,
	}
}
