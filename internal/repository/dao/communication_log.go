package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// CommunicationLog 通讯记录实体，Results 为 json 序列化后的投递结果
type CommunicationLog struct {
	Id             uint64 `gorm:"primaryKey;autoIncrement"`
	SenderId       uint64
	SchoolId       uint64 `gorm:"index:idx_school_sent_at"`
	RecipientId    uint64 `gorm:"index"`
	Type           string
	Channel        string
	Template       string
	Subject        string
	Message        string
	Status         string
	RecipientCount int
	SuccessCount   int
	FailureCount   int
	Results        string
	SentAt         int64 `gorm:"index:idx_school_sent_at"`
	CreatedAt      int64
	UpdatedAt      int64
}

func (c CommunicationLog) TableName() string {
	return "communication_log"
}

//go:generate mockgen -source=./communication_log.go -destination=./mock/communication_log.mock.go -package=daomock -typed CommunicationLogDAO

type CommunicationLogDAO interface {
	Insert(ctx context.Context, entity CommunicationLog) (uint64, error)
	// FindBySchool 按发送时间倒序查询 since 之后的记录
	FindBySchool(ctx context.Context, schoolId uint64, since int64, limit int) ([]CommunicationLog, error)
	CountBySchool(ctx context.Context, schoolId uint64, since int64) (int64, error)
	FindByRecipient(ctx context.Context, recipientId uint64, limit int) ([]CommunicationLog, error)
}

var _ CommunicationLogDAO = (*DefaultCommunicationLogDAO)(nil)

type DefaultCommunicationLogDAO struct {
	db *gorm.DB
}

func (d *DefaultCommunicationLogDAO) Insert(ctx context.Context, entity CommunicationLog) (uint64, error) {
	now := time.Now().UnixMilli()
	entity.CreatedAt = now
	entity.UpdatedAt = now

	if err := d.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return 0, err
	}
	return entity.Id, nil
}

func (d *DefaultCommunicationLogDAO) FindBySchool(ctx context.Context, schoolId uint64, since int64, limit int) ([]CommunicationLog, error) {
	var logs []CommunicationLog
	err := d.db.WithContext(ctx).
		Where("school_id = ? AND sent_at >= ?", schoolId, since).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (d *DefaultCommunicationLogDAO) CountBySchool(ctx context.Context, schoolId uint64, since int64) (int64, error) {
	var cnt int64
	err := d.db.WithContext(ctx).
		Model(&CommunicationLog{}).
		Where("school_id = ? AND sent_at >= ?", schoolId, since).
		Count(&cnt).Error
	return cnt, err
}

func (d *DefaultCommunicationLogDAO) FindByRecipient(ctx context.Context, recipientId uint64, limit int) ([]CommunicationLog, error) {
	var logs []CommunicationLog
	err := d.db.WithContext(ctx).
		Where("recipient_id = ?", recipientId).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func NewDefaultCommunicationLogDAO(db *gorm.DB) *DefaultCommunicationLogDAO {
	return &DefaultCommunicationLogDAO{
		db: db,
	}
}
