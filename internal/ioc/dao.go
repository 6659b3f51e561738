package ioc

import (
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/dao"
	"go.uber.org/fx"
)

var DaoFxOpt = fx.Provide(
	// user dao
	fx.Annotate(
		dao.NewDefaultUserDAO,
		fx.As(new(dao.UserDAO)),
	),
	// student dao
	fx.Annotate(
		dao.NewDefaultStudentDAO,
		fx.As(new(dao.StudentDAO)),
	),
	// school dao
	fx.Annotate(
		dao.NewDefaultSchoolDAO,
		fx.As(new(dao.SchoolDAO)),
	),
	// communication log dao
	fx.Annotate(
		dao.NewDefaultCommunicationLogDAO,
		fx.As(new(dao.CommunicationLogDAO)),
	),
)
