package client

import (
	"context"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/registry"
	"google.golang.org/grpc/attributes"
	"google.golang.org/grpc/resolver"
)

var _ resolver.Builder = (*ResolverBuilder)(nil)

// ResolverBuilder 基于注册中心的 grpc 服务发现
type ResolverBuilder struct {
	registry registry.Registry
	timeout  time.Duration
}

func (b *ResolverBuilder) Build(target resolver.Target, cc resolver.ClientConn, _ resolver.BuildOptions) (resolver.Resolver, error) {
	r := &registryResolver{
		registry: b.registry,
		timeout:  b.timeout,
		service:  target.Endpoint(),
		cc:       cc,
		close:    make(chan struct{}),
	}

	r.resolve()
	go r.watch()
	return r, nil
}

func (b *ResolverBuilder) Scheme() string {
	return Scheme
}

func NewResolverBuilder(r registry.Registry, timeout time.Duration) *ResolverBuilder {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ResolverBuilder{
		registry: r,
		timeout:  timeout,
	}
}

var _ resolver.Resolver = (*registryResolver)(nil)

type registryResolver struct {
	registry registry.Registry
	timeout  time.Duration

	service string
	cc      resolver.ClientConn

	close chan struct{} // 用来控制 watch 方法退出
}

func (r *registryResolver) ResolveNow(_ resolver.ResolveNowOptions) {
	r.resolve()
}

func (r *registryResolver) resolve() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	instances, err := r.registry.ListService(ctx, r.service)
	cancel()

	if err != nil {
		r.cc.ReportError(err)
		return
	}

	addrs := make([]resolver.Address, 0, len(instances))
	for _, instance := range instances {
		addrs = append(addrs, resolver.Address{
			Addr:       instance.Addr,
			ServerName: instance.Name,
			Attributes: attributes.New(AttrGroup, instance.Group).
				WithValue(AttrNode, instance.Addr),
		})
	}

	if err = r.cc.UpdateState(resolver.State{Addresses: addrs}); err != nil {
		r.cc.ReportError(err)
	}
}

func (r *registryResolver) Close() {
	close(r.close)
}

func (r *registryResolver) watch() {
	events := r.registry.Subscribe(r.service)

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			r.resolve()
		case <-r.close:
			return
		}
	}
}
