package ioc

import (
	"context"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/service/policy"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var EtcdFxOpt = fx.Options(
	fx.Provide(
		InitEtcdClient,
		InitRateWatcher,
	),
	fx.Invoke(RateWatcherLifecycle),
)

func InitEtcdClient(lc fx.Lifecycle) *clientv3.Client {
	type config struct {
		Username    string        `mapstructure:"username"`
		Password    string        `mapstructure:"password"`
		Endpoints   []string      `mapstructure:"endpoints"`
		DialTimeout time.Duration `mapstructure:"dial_timeout"`
	}
	cfg := &config{}
	if err := viper.UnmarshalKey("etcd", cfg); err != nil {
		panic(err)
	}

	client, err := clientv3.New(clientv3.Config{
		Username:    cfg.Username,
		Password:    cfg.Password,
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		panic(err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

// InitRateWatcher 监听 etcd 中的短信费率表，变更后热更新到网络策略
func InitRateWatcher(client *clientv3.Client, p *policy.DefaultNetworkPolicy, logger *zap.Logger) *policy.RateWatcher {
	key := viper.GetString("etcd.rate_key")
	return policy.NewRateWatcher(p, policy.NewEtcdRateSource(client, key), logger)
}

func RateWatcherLifecycle(lc fx.Lifecycle, w *policy.RateWatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}
