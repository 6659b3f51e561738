package repository

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/dao"
)

type StudentRepo interface {
	FindById(ctx context.Context, id uint64) (domain.Student, error)
}

var _ StudentRepo = (*DefaultStudentRepo)(nil)

type DefaultStudentRepo struct {
	dao dao.StudentDAO
}

func (r *DefaultStudentRepo) FindById(ctx context.Context, id uint64) (domain.Student, error) {
	entity, err := r.dao.FindById(ctx, id)
	if err != nil {
		return domain.Student{}, err
	}
	return domain.Student{
		Id:        entity.Id,
		FirstName: entity.FirstName,
		LastName:  entity.LastName,
		ClassName: entity.ClassName,
		ParentId:  entity.ParentId,
		SchoolId:  entity.SchoolId,
	}, nil
}

func NewDefaultStudentRepo(dao dao.StudentDAO) *DefaultStudentRepo {
	return &DefaultStudentRepo{
		dao: dao,
	}
}

type SchoolRepo interface {
	FindById(ctx context.Context, id uint64) (domain.School, error)
}

var _ SchoolRepo = (*DefaultSchoolRepo)(nil)

type DefaultSchoolRepo struct {
	dao dao.SchoolDAO
}

func (r *DefaultSchoolRepo) FindById(ctx context.Context, id uint64) (domain.School, error) {
	entity, err := r.dao.FindById(ctx, id)
	if err != nil {
		return domain.School{}, err
	}
	return domain.School{Id: entity.Id, Name: entity.Name}, nil
}

func NewDefaultSchoolRepo(dao dao.SchoolDAO) *DefaultSchoolRepo {
	return &DefaultSchoolRepo{
		dao: dao,
	}
}
