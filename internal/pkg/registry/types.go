package registry

import (
	"context"
	"io"
)

//go:generate mockgen -source=./types.go -destination=./mock/registry.mock.go -package=registrymock -typed Registry

// Registry 服务注册中心，实例随注册中心租约存活，进程退出后自动摘除。
type Registry interface {
	Register(ctx context.Context, si ServiceInstance) error
	Unregister(ctx context.Context, si ServiceInstance) error
	ListService(ctx context.Context, serviceName string) ([]ServiceInstance, error)
	// Subscribe 订阅服务实例变更，Close 后 channel 关闭。
	Subscribe(serviceName string) <-chan Event

	io.Closer
}

type ServiceInstance struct {
	Name  string `json:"name"`
	Addr  string `json:"addr"`
	Group string `json:"group"`
}

type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypePut
	EventTypeDelete
)

type Event struct {
	Type EventType
	Key  string
}
