package ioc

import (
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/cache"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/cache/local"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/cache/redis"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var RepoFxOpt = fx.Options(
	// cache
	fx.Provide(
		fx.Annotate(
			InitRecipientLocalCache,
			fx.As(new(cache.RecipientCache)),
			fx.ResultTags(`name:"recipient_local_cache"`),
		),
		fx.Annotate(
			redis.NewRecipientRedisCache,
			fx.As(new(cache.RecipientCache)),
			fx.ResultTags(`name:"recipient_redis_cache"`),
		),
	),

	// repository
	fx.Provide(
		// recipient repository
		fx.Annotate(
			repository.NewDefaultRecipientRepo,
			fx.As(new(repository.RecipientRepo)),
			fx.ParamTags(``, `name:"recipient_local_cache"`, `name:"recipient_redis_cache"`),
		),
		// student repository
		fx.Annotate(
			repository.NewDefaultStudentRepo,
			fx.As(new(repository.StudentRepo)),
		),
		// school repository
		fx.Annotate(
			repository.NewDefaultSchoolRepo,
			fx.As(new(repository.SchoolRepo)),
		),
		// communication log repository
		fx.Annotate(
			repository.NewDefaultCommunicationLogRepo,
			fx.As(new(repository.CommunicationLogRepo)),
		),
	),
)

func InitRecipientLocalCache() *local.RecipientLocalCache {
	return local.NewRecipientLocalCache(viper.GetDuration("cache.recipient_local_expires"))
}
