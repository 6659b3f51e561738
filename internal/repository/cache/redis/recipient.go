package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/cache"
)

var _ cache.RecipientCache = (*RecipientRedisCache)(nil)

type RecipientRedisCache struct {
	client redis.Cmdable
}

func (r *RecipientRedisCache) Set(ctx context.Context, userId uint64, recipient domain.Recipient) error {
	data, err := json.Marshal(recipient)
	if err != nil {
		return fmt.Errorf("[educafric] marshal recipient error: %w", err)
	}
	if err = r.client.Set(ctx, cache.RecipientKey(userId), data, cache.DefaultExpires).Err(); err != nil {
		return fmt.Errorf("[educafric] set recipient to redis error: %w", err)
	}
	return nil
}

func (r *RecipientRedisCache) Get(ctx context.Context, userId uint64) (domain.Recipient, error) {
	key := cache.RecipientKey(userId)
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Recipient{}, fmt.Errorf("%w: key = %s", errs.ErrRecipientCacheKeyNotFound, key)
		}
		return domain.Recipient{}, fmt.Errorf("[educafric] get recipient from redis error: %w", err)
	}

	var recipient domain.Recipient
	if err = json.Unmarshal(val, &recipient); err != nil {
		return domain.Recipient{}, fmt.Errorf("[educafric] unmarshal recipient error: %w", err)
	}
	return recipient, nil
}

func NewRecipientRedisCache(client redis.Cmdable) *RecipientRedisCache {
	return &RecipientRedisCache{
		client: client,
	}
}
