package interceptor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Chain 自定义拦截器链，grpc 官方只允许一次 grpc.UnaryInterceptor 调用
func Chain(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		// 顺序嵌套调用
		chained := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			curr := interceptors[i]
			next := chained
			chained = func(ctx context.Context, req any) (any, error) {
				return curr(ctx, req, info, next)
			}
		}
		return chained(ctx, req)
	}
}

// Recovery 将 handler 中的 panic 转换为 Internal 错误
func Recovery(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(
					"[educafric] panic in grpc handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
				)
				err = status.Error(codes.Internal, fmt.Sprintf("panic: %v", r))
			}
		}()
		return handler(ctx, req)
	}
}

// Logging 记录每次调用的耗时与状态码
func Logging(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			logger.Warn("[educafric] grpc call failed", append(fields, zap.Error(err))...)
			return resp, err
		}
		logger.Debug("[educafric] grpc call", fields...)
		return resp, nil
	}
}
