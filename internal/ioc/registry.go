package ioc

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/registry"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/fx"
)

var RegistryFxOpt = fx.Provide(
	fx.Annotate(
		InitRegistry,
		fx.As(new(registry.Registry)),
	),
)

func InitRegistry(lc fx.Lifecycle, client *clientv3.Client) *registry.EtcdRegistry {
	r, err := registry.NewEtcdRegistry(client)
	if err != nil {
		panic(err)
	}

	// 关闭 session 即撤销租约，注册的实例随之摘除
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Close()
		},
	})
	return r
}
