package ioc

import (
	"context"
	"database/sql"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/isolation"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository/dao"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DBFxOpt = fx.Provide(
	InitDB,
)

type dbConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// InitDB 初始化数据库。
//
// 分发链路与报表查询使用不同的连接池，未配置 reporting 时共用 primary。
func InitDB(lc fx.Lifecycle, logger *zap.Logger) *gorm.DB {
	type config struct {
		Primary     dbConfig `mapstructure:"primary"`
		Reporting   dbConfig `mapstructure:"reporting"`
		AutoMigrate bool     `mapstructure:"auto_migrate"`
	}

	cfg := &config{}
	if err := viper.UnmarshalKey("db.mysql", cfg); err != nil {
		panic(err)
	}

	primary := openSqlDB(cfg.Primary)
	pools := []*sql.DB{primary}

	var reporting gorm.ConnPool
	if cfg.Reporting.DSN != "" {
		reportingDB := openSqlDB(cfg.Reporting)
		pools = append(pools, reportingDB)
		reporting = reportingDB
	}

	db, err := gorm.Open(
		mysql.New(mysql.Config{Conn: isolation.NewConnPool(primary, reporting)}),
		&gorm.Config{SkipDefaultTransaction: true},
	)
	if err != nil {
		panic(err)
	}

	if cfg.AutoMigrate {
		if err = db.AutoMigrate(&dao.CommunicationLog{}); err != nil {
			panic(err)
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			for _, pool := range pools {
				if closeErr := pool.Close(); closeErr != nil {
					logger.Error("[educafric] failed to close db pool", zap.Error(closeErr))
				}
			}
			return nil
		},
	})
	return db
}

func openSqlDB(cfg dbConfig) *sql.DB {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return sqlDB
}
