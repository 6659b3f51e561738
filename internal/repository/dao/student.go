package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"gorm.io/gorm"
)

type Student struct {
	Id        uint64
	FirstName string
	LastName  string
	ClassName string
	ParentId  uint64
	SchoolId  uint64
	CreatedAt int64
	UpdatedAt int64
}

func (s Student) TableName() string {
	return "students"
}

type School struct {
	Id        uint64
	Name      string
	CreatedAt int64
	UpdatedAt int64
}

func (s School) TableName() string {
	return "schools"
}

//go:generate mockgen -source=./student.go -destination=./mock/student.mock.go -package=daomock -typed StudentDAO,SchoolDAO

type StudentDAO interface {
	FindById(ctx context.Context, id uint64) (Student, error)
}

type SchoolDAO interface {
	FindById(ctx context.Context, id uint64) (School, error)
}

var _ StudentDAO = (*DefaultStudentDAO)(nil)

type DefaultStudentDAO struct {
	db *gorm.DB
}

func (d *DefaultStudentDAO) FindById(ctx context.Context, id uint64) (Student, error) {
	var student Student
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Student{}, fmt.Errorf("%w: student id = %d", errs.ErrStudentNotFound, id)
		}
		return Student{}, err
	}
	return student, nil
}

func NewDefaultStudentDAO(db *gorm.DB) *DefaultStudentDAO {
	return &DefaultStudentDAO{
		db: db,
	}
}

var _ SchoolDAO = (*DefaultSchoolDAO)(nil)

type DefaultSchoolDAO struct {
	db *gorm.DB
}

func (d *DefaultSchoolDAO) FindById(ctx context.Context, id uint64) (School, error) {
	var school School
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&school).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return School{}, fmt.Errorf("%w: school id = %d", errs.ErrSchoolNotFound, id)
		}
		return School{}, err
	}
	return school, nil
}

func NewDefaultSchoolDAO(db *gorm.DB) *DefaultSchoolDAO {
	return &DefaultSchoolDAO{
		db: db,
	}
}
