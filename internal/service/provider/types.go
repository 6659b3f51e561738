package provider

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

// Message 已渲染完成、待供应商发送的单条消息
type Message struct {
	Channel   domain.Channel
	Template  domain.TemplateKey
	Priority  domain.Priority
	Recipient domain.Recipient
	Subject   string
	Body      string
	Metadata  map[string]string
}

// Receipt 供应商受理回执
type Receipt struct {
	MessageId string
	Provider  string
}

//go:generate mockgen -source=./types.go -destination=./mock/provider.mock.go -package=providermock -typed Provider

// Provider 消息供应商，负责对接具体的外部发送服务。
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Selector 供应商选择器，每次调用 Next 返回下一个可用供应商。
type Selector interface {
	Next(ctx context.Context, msg Message) (Provider, error)
}

// SelectorBuilder 每次发送构建一个新的 Selector，Selector 本身不要求并发安全。
type SelectorBuilder interface {
	Build() (Selector, error)
}
