package ioc

import (
	grpcapi "github.com/simonmuehling/educafric-platform-sub010/internal/api/grpc"
	"github.com/simonmuehling/educafric-platform-sub010/internal/api/grpc/interceptor"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var GrpcFxOpt = fx.Provide(
	InitGrpcServer,
	grpcapi.NewNotificationServer,
)

func InitGrpcServer(server *grpcapi.NotificationServer, logger *zap.Logger) *grpc.Server {
	grpcSvr := grpc.NewServer(
		// 注册拦截器，recovery 放在最外层
		grpc.UnaryInterceptor(interceptor.Chain(
			interceptor.Recovery(logger),
			interceptor.Logging(logger),
		)),
	)
	grpcapi.RegisterNotificationServiceServer(grpcSvr, server)
	return grpcSvr
}
