package channel

import (
	"context"
	"fmt"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
)

//go:generate mockgen -source=./types.go -destination=./mock/channel.mock.go -package=channelmock -typed Channel

// Channel 发送渠道接口，负责把一条载荷发送给一个收件人。
//
// 收件人缺少联系方式、模板解析失败等可恢复错误以 error 返回，
// 供应商发送失败则转换为失败的 NotificationResult。
type Channel interface {
	Send(ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient) (domain.NotificationResult, error)
}

var _ Channel = (*Dispatcher)(nil)

// Dispatcher 渠道分发器，作为对外统一入口。
type Dispatcher struct {
	channels map[domain.Channel]Channel
}

func (d *Dispatcher) Send(
	ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient,
) (domain.NotificationResult, error) {
	if channel, ok := d.channels[payload.Channel]; ok {
		return channel.Send(ctx, payload, recipient)
	}
	return domain.NotificationResult{}, fmt.Errorf("%w: channel = %s", errs.ErrInvalidChannel, payload.Channel)
}

// Supports 判断渠道是否已注册
func (d *Dispatcher) Supports(c domain.Channel) bool {
	_, ok := d.channels[c]
	return ok
}

func NewDispatcher(channels map[domain.Channel]Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
	}
}
