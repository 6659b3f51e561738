package local

import (
	"context"
	"fmt"
	"time"

	gcache "github.com/patrickmn/go-cache"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/cache"
)

var _ cache.RecipientCache = (*RecipientLocalCache)(nil)

type RecipientLocalCache struct {
	c       *gcache.Cache
	expires time.Duration
}

func (lc *RecipientLocalCache) Get(_ context.Context, userId uint64) (domain.Recipient, error) {
	key := cache.RecipientKey(userId)
	val, ok := lc.c.Get(key)
	if !ok {
		return domain.Recipient{}, fmt.Errorf("%w: key = %s", errs.ErrRecipientCacheKeyNotFound, key)
	}

	recipient, ok := val.(domain.Recipient)
	if !ok {
		// 类型不符视为未命中并清除
		lc.c.Delete(key)
		return domain.Recipient{}, fmt.Errorf("%w: key = %s", errs.ErrRecipientCacheKeyNotFound, key)
	}
	return recipient, nil
}

func (lc *RecipientLocalCache) Set(_ context.Context, userId uint64, recipient domain.Recipient) error {
	lc.c.Set(cache.RecipientKey(userId), recipient, lc.expires)
	return nil
}

// NewRecipientLocalCache 本地缓存有效期应短于 redis 缓存，减少多实例间的数据不一致
func NewRecipientLocalCache(expires time.Duration) *RecipientLocalCache {
	if expires <= 0 {
		expires = time.Minute
	}
	return &RecipientLocalCache{
		c:       gcache.New(expires, 2*expires),
		expires: expires,
	}
}
