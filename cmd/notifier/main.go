package main

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/simonmuehling/educafric-platform-sub010/internal/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

func main() {
	initViper()

	fx.New(
		// 初始化 zap.Logger
		ioc.LoggerFxOpt,

		// 初始化数据库、redis 与 etcd
		ioc.DBFxOpt,
		ioc.RedisFxOpt,
		ioc.EtcdFxOpt,

		// 初始化 prometheus 指标
		ioc.MetricsFxOpt,

		// 初始化 DAO 与 Repo
		ioc.DaoFxOpt,
		ioc.RepoFxOpt,

		// 初始化 Service
		ioc.ServiceFxOpt,

		// 初始化注册中心
		ioc.RegistryFxOpt,
		// 初始化 grpc.Server
		ioc.GrpcFxOpt,

		// 初始化 ioc.App
		ioc.AppFxOpt,

		// 实际运行方法，即调用 ioc.AppLifecycle 方法
		ioc.AppFxInvoke,
		// 确保日志缓冲区被刷新
		ioc.LoggerFxInvoke,
	).Run()
}

// initViper 初始化 viper，环境变量优先于配置文件（如 SMS_RATES_DEFAULT 覆盖 sms.rates.default）
func initViper() {
	configFile := pflag.String("config", "etc/config.yaml", "配置文件路径")
	envFile := pflag.String("env", ".env", "环境变量文件路径")
	pflag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load(*envFile)

	viper.SetConfigFile(*configFile)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
}
