package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/cache"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/dao"
	"go.uber.org/zap"
)

//go:generate mockgen -source=./recipient.go -destination=./mock/recipient.mock.go -package=repomock -typed RecipientRepo

// RecipientRepo 将平台用户解析为收件人
type RecipientRepo interface {
	FindById(ctx context.Context, userId uint64) (domain.Recipient, error)
	// FindByIds 按入参顺序返回找到的收件人，不存在的用户直接跳过
	FindByIds(ctx context.Context, userIds []uint64) ([]domain.Recipient, error)
}

var _ RecipientRepo = (*DefaultRecipientRepo)(nil)

type DefaultRecipientRepo struct {
	dao        dao.UserDAO
	localCache cache.RecipientCache
	redisCache cache.RecipientCache
	logger     *zap.Logger
}

func (r *DefaultRecipientRepo) FindById(ctx context.Context, userId uint64) (domain.Recipient, error) {
	if recipient, ok := r.fromCache(ctx, userId); ok {
		return recipient, nil
	}

	user, err := r.dao.FindById(ctx, userId)
	if err != nil {
		return domain.Recipient{}, err
	}

	recipient := toRecipient(user)
	r.refresh(ctx, userId, recipient)
	return recipient, nil
}

func (r *DefaultRecipientRepo) FindByIds(ctx context.Context, userIds []uint64) ([]domain.Recipient, error) {
	found := make(map[uint64]domain.Recipient, len(userIds))
	checked := make(map[uint64]struct{}, len(userIds))
	missed := make([]uint64, 0, len(userIds))
	for _, id := range userIds {
		if _, ok := checked[id]; ok {
			continue
		}
		checked[id] = struct{}{}

		if recipient, ok := r.fromCache(ctx, id); ok {
			found[id] = recipient
			continue
		}
		missed = append(missed, id)
	}

	if len(missed) > 0 {
		users, err := r.dao.FindByIds(ctx, missed)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			recipient := toRecipient(user)
			found[user.Id] = recipient
			r.refresh(ctx, user.Id, recipient)
		}
	}

	res := make([]domain.Recipient, 0, len(userIds))
	seen := make(map[uint64]struct{}, len(userIds))
	for _, id := range userIds {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if recipient, ok := found[id]; ok {
			res = append(res, recipient)
		}
	}
	return res, nil
}

// fromCache 先查本地缓存，再查 redis，redis 命中时回填本地缓存
func (r *DefaultRecipientRepo) fromCache(ctx context.Context, userId uint64) (domain.Recipient, bool) {
	recipient, err := r.localCache.Get(ctx, userId)
	if err == nil {
		return recipient, true
	}

	recipient, err = r.redisCache.Get(ctx, userId)
	if err != nil {
		return domain.Recipient{}, false
	}

	if lcErr := r.localCache.Set(ctx, userId, recipient); lcErr != nil {
		r.logger.Error("[educafric] failed to refresh recipient local cache", zap.Error(lcErr), zap.Uint64("user_id", userId))
	}
	return recipient, true
}

func (r *DefaultRecipientRepo) refresh(ctx context.Context, userId uint64, recipient domain.Recipient) {
	// 先刷新本地缓存（本地缓存几乎不会出错）
	if lcErr := r.localCache.Set(ctx, userId, recipient); lcErr != nil {
		r.logger.Error("[educafric] failed to refresh recipient local cache", zap.Error(lcErr), zap.Uint64("user_id", userId))
	}
	if rcErr := r.redisCache.Set(ctx, userId, recipient); rcErr != nil {
		r.logger.Error("[educafric] failed to refresh recipient redis cache", zap.Error(rcErr), zap.Uint64("user_id", userId))
	}
}

func toRecipient(user dao.User) domain.Recipient {
	return domain.Recipient{
		Id:                strconv.FormatUint(user.Id, 10),
		Name:              strings.TrimSpace(user.FirstName + " " + user.LastName),
		Email:             user.Email,
		Phone:             user.Phone,
		PreferredLanguage: domain.ParseLanguage(user.PreferredLanguage),
		Role:              domain.Role(user.Role),
	}
}

func NewDefaultRecipientRepo(
	dao dao.UserDAO,
	localCache cache.RecipientCache,
	redisCache cache.RecipientCache,
	logger *zap.Logger,
) *DefaultRecipientRepo {
	return &DefaultRecipientRepo{
		dao:        dao,
		localCache: localCache,
		redisCache: redisCache,
		logger:     logger,
	}
}
