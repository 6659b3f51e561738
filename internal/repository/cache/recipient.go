package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

const (
	RecipientPrefix = "educafric:recipient"
	DefaultExpires  = 15 * time.Minute
)

//go:generate mockgen -source=./recipient.go -destination=./mock/recipient.mock.go -package=cachemock -typed RecipientCache

// RecipientCache 收件人缓存，key 不存在时返回 errs.ErrRecipientCacheKeyNotFound
type RecipientCache interface {
	Get(ctx context.Context, userId uint64) (domain.Recipient, error)
	Set(ctx context.Context, userId uint64, recipient domain.Recipient) error
}

func RecipientKey(userId uint64) string {
	return fmt.Sprintf("%s:%d", RecipientPrefix, userId)
}
