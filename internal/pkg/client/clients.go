package client

import (
	"fmt"
	"sync"

	"github.com/JrMarcco/easy-kit/xsync"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/resolver"
)

// Clients 按服务名缓存 grpc 客户端，同一服务只建立一个连接
type Clients[T any] struct {
	mu        sync.Mutex
	clientMap xsync.Map[string, T]
	conns     []*grpc.ClientConn

	rb       resolver.Builder
	insecure bool
	dialOpts []grpc.DialOption

	creator func(conn grpc.ClientConnInterface) T
}

func (c *Clients[T]) Get(serviceName string) (T, error) {
	if client, ok := c.clientMap.Load(serviceName); ok {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// double check
	if client, ok := c.clientMap.Load(serviceName); ok {
		return client, nil
	}

	conn, err := c.dial(serviceName)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("[educafric] failed to create grpc client for service %s: %w", serviceName, err)
	}

	client := c.creator(conn)
	c.conns = append(c.conns, conn)
	c.clientMap.Store(serviceName, client)
	return client, nil
}

func (c *Clients[T]) dial(serviceName string) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithResolvers(c.rb),
		grpc.WithNoProxy(),
		grpc.WithDefaultServiceConfig(fmt.Sprintf(`{"loadBalancingPolicy":%q}`, BalancerName)),
	}
	if c.insecure {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	opts = append(opts, c.dialOpts...)

	return grpc.NewClient(fmt.Sprintf("%s:///%s", Scheme, serviceName), opts...)
}

// Close 关闭所有已建立的连接，之后 Clients 不可再使用
func (c *Clients[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.conns = nil
	return firstErr
}

func NewClients[T any](
	rb resolver.Builder, insecure bool, creator func(conn grpc.ClientConnInterface) T, dialOpts ...grpc.DialOption,
) *Clients[T] {
	return &Clients[T]{
		rb:       rb,
		insecure: insecure,
		dialOpts: dialOpts,
		creator:  creator,
	}
}
