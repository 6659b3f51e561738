package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var trace []string
	mark := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			trace = append(trace, name+":before")
			resp, err := handler(ctx, req)
			trace = append(trace, name+":after")
			return resp, err
		}
	}

	chained := Chain(mark("a"), mark("b"))
	resp, err := chained(t.Context(), "req", &grpc.UnaryServerInfo{FullMethod: "/svc/M"}, func(_ context.Context, req any) (any, error) {
		trace = append(trace, "handler")
		return req, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "req", resp)
	assert.Equal(t, []string{"a:before", "b:before", "handler", "b:after", "a:after"}, trace)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	interceptor := Chain(Recovery(zap.NewNop()), Logging(zap.NewNop()))
	_, err := interceptor(t.Context(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/M"}, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
