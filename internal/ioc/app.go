package ioc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/registry"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var AppFxOpt = fx.Provide(
	InitApp,
)

var AppFxInvoke = fx.Invoke(
	AppLifecycle,
)

type App struct {
	grpcServer *grpc.Server

	timeout  time.Duration
	registry registry.Registry
	si       registry.ServiceInstance

	logger *zap.Logger
}

func InitApp(grpcServer *grpc.Server, r registry.Registry, zLogger *zap.Logger) *App {
	type config struct {
		Name    string        `mapstructure:"name"`
		Addr    string        `mapstructure:"addr"`
		Group   string        `mapstructure:"group"`
		Timeout time.Duration `mapstructure:"timeout"`
	}
	cfg := &config{}
	if err := viper.UnmarshalKey("app", cfg); err != nil {
		panic(err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	return &App{
		grpcServer: grpcServer,
		timeout:    cfg.Timeout,
		registry:   r,
		si: registry.ServiceInstance{
			Name:  cfg.Name,
			Addr:  cfg.Addr,
			Group: cfg.Group,
		},
		logger: zLogger,
	}
}

func AppLifecycle(lc fx.Lifecycle, app *App) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			si := app.si

			ln, err := net.Listen("tcp", si.Addr)
			if err != nil {
				return err
			}

			// 启动 gRPC 服务器
			go func() {
				if serveErr := app.grpcServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
					app.logger.Error("[educafric] grpc server stopped", zap.Error(serveErr))
				}
			}()
			app.logger.Info("[educafric] grpc server started", zap.String("addr", si.Addr))

			// 注册服务到注册中心
			registerCtx, cancel := context.WithTimeout(ctx, app.timeout)
			defer cancel()
			return app.registry.Register(registerCtx, si)
		},
		OnStop: func(ctx context.Context) error {
			// 从注册中心注销服务
			unregisterCtx, cancel := context.WithTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := app.registry.Unregister(unregisterCtx, app.si); err != nil {
				// 记录错误但不返回，确保服务器能够正常关闭
				app.logger.Error("[educafric] failed to unregister service", zap.Error(err))
			}

			// 优雅退出
			app.grpcServer.GracefulStop()
			return nil
		},
	})
}
