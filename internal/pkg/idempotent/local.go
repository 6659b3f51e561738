package idempotent

import (
	"context"
	"time"

	gcache "github.com/patrickmn/go-cache"
)

var _ Strategy = (*LocalStrategy)(nil)

// LocalStrategy 进程内幂等策略，未配置 redis 时使用
type LocalStrategy struct {
	c       *gcache.Cache
	expires time.Duration
}

func (l *LocalStrategy) Claim(_ context.Context, key string) (bool, error) {
	// Add 在 key 已存在且未过期时返回错误
	if err := l.c.Add(keyPrefix+key, struct{}{}, l.expires); err != nil {
		return false, nil
	}
	return true, nil
}

func (l *LocalStrategy) Release(_ context.Context, key string) error {
	l.c.Delete(keyPrefix + key)
	return nil
}

func NewLocalStrategy(expires time.Duration) *LocalStrategy {
	return &LocalStrategy{
		c:       gcache.New(expires, 2*expires),
		expires: expires,
	}
}
