package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JrMarcco/easy-kit/slice"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/dao"
	"go.uber.org/zap"
)

//go:generate mockgen -source=./communication_log.go -destination=./mock/communication_log.mock.go -package=repomock -typed CommunicationLogRepo

type CommunicationLogRepo interface {
	Create(ctx context.Context, log domain.CommunicationLog) (uint64, error)
	FindRecentBySchool(ctx context.Context, schoolId uint64, since time.Time, limit int) ([]domain.CommunicationLog, error)
	CountBySchool(ctx context.Context, schoolId uint64, since time.Time) (int, error)
	FindByRecipient(ctx context.Context, recipientId uint64, limit int) ([]domain.CommunicationLog, error)
}

var _ CommunicationLogRepo = (*DefaultCommunicationLogRepo)(nil)

type DefaultCommunicationLogRepo struct {
	dao    dao.CommunicationLogDAO
	logger *zap.Logger
}

func (r *DefaultCommunicationLogRepo) Create(ctx context.Context, log domain.CommunicationLog) (uint64, error) {
	entity, err := r.toEntity(log)
	if err != nil {
		return 0, err
	}

	id, err := r.dao.Insert(ctx, entity)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrFailedToCreateCommunicationLog, err)
	}
	return id, nil
}

func (r *DefaultCommunicationLogRepo) FindRecentBySchool(
	ctx context.Context, schoolId uint64, since time.Time, limit int,
) ([]domain.CommunicationLog, error) {
	entities, err := r.dao.FindBySchool(ctx, schoolId, since.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.CommunicationLog) domain.CommunicationLog {
		return r.toDomain(src)
	}), nil
}

func (r *DefaultCommunicationLogRepo) CountBySchool(ctx context.Context, schoolId uint64, since time.Time) (int, error) {
	cnt, err := r.dao.CountBySchool(ctx, schoolId, since.UnixMilli())
	if err != nil {
		return 0, err
	}
	return int(cnt), nil
}

func (r *DefaultCommunicationLogRepo) FindByRecipient(ctx context.Context, recipientId uint64, limit int) ([]domain.CommunicationLog, error) {
	entities, err := r.dao.FindByRecipient(ctx, recipientId, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.CommunicationLog) domain.CommunicationLog {
		return r.toDomain(src)
	}), nil
}

func (r *DefaultCommunicationLogRepo) toEntity(log domain.CommunicationLog) (dao.CommunicationLog, error) {
	results, err := json.Marshal(log.Results)
	if err != nil {
		return dao.CommunicationLog{}, fmt.Errorf("%w: marshal results: %w", errs.ErrFailedToCreateCommunicationLog, err)
	}

	return dao.CommunicationLog{
		SenderId:       log.SenderId,
		SchoolId:       log.SchoolId,
		RecipientId:    log.RecipientId,
		Type:           log.Type.String(),
		Channel:        log.Channel.String(),
		Template:       log.Template.String(),
		Subject:        log.Subject,
		Message:        log.Message,
		Status:         log.Status.String(),
		RecipientCount: log.RecipientCount,
		SuccessCount:   log.SuccessCount,
		FailureCount:   log.FailureCount,
		Results:        string(results),
		SentAt:         log.SentAt.UnixMilli(),
	}, nil
}

func (r *DefaultCommunicationLogRepo) toDomain(entity dao.CommunicationLog) domain.CommunicationLog {
	var results []domain.NotificationResult
	if entity.Results != "" {
		if err := json.Unmarshal([]byte(entity.Results), &results); err != nil {
			r.logger.Warn(
				"[educafric] failed to unmarshal communication log results",
				zap.Uint64("log_id", entity.Id),
				zap.Error(err),
			)
		}
	}

	return domain.CommunicationLog{
		Id:             entity.Id,
		SenderId:       entity.SenderId,
		SchoolId:       entity.SchoolId,
		RecipientId:    entity.RecipientId,
		Type:           domain.CommunicationType(entity.Type),
		Channel:        domain.Channel(entity.Channel),
		Template:       domain.TemplateKey(entity.Template),
		Subject:        entity.Subject,
		Message:        entity.Message,
		Status:         domain.CommunicationStatus(entity.Status),
		RecipientCount: entity.RecipientCount,
		SuccessCount:   entity.SuccessCount,
		FailureCount:   entity.FailureCount,
		Results:        results,
		SentAt:         time.UnixMilli(entity.SentAt),
	}
}

func NewDefaultCommunicationLogRepo(dao dao.CommunicationLogDAO, logger *zap.Logger) *DefaultCommunicationLogRepo {
	return &DefaultCommunicationLogRepo{
		dao:    dao,
		logger: logger,
	}
}
