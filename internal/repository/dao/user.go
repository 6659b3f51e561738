package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"gorm.io/gorm"
)

// User 平台用户（家长、教师、校长等）
type User struct {
	Id                uint64
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	PreferredLanguage string
	Role              string
	SchoolId          uint64
	CreatedAt         int64
	UpdatedAt         int64
}

func (u User) TableName() string {
	return "users"
}

//go:generate mockgen -source=./user.go -destination=./mock/user.mock.go -package=daomock -typed UserDAO

type UserDAO interface {
	FindById(ctx context.Context, id uint64) (User, error)
	FindByIds(ctx context.Context, ids []uint64) ([]User, error)
}

var _ UserDAO = (*DefaultUserDAO)(nil)

type DefaultUserDAO struct {
	db *gorm.DB
}

func (d *DefaultUserDAO) FindById(ctx context.Context, id uint64) (User, error) {
	var user User
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, fmt.Errorf("%w: user id = %d", errs.ErrUserNotFound, id)
		}
		return User{}, err
	}
	return user, nil
}

func (d *DefaultUserDAO) FindByIds(ctx context.Context, ids []uint64) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}

	var users []User
	if err := d.db.WithContext(ctx).Where("id IN (?)", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func NewDefaultUserDAO(db *gorm.DB) *DefaultUserDAO {
	return &DefaultUserDAO{
		db: db,
	}
}
