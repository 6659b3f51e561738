package channel

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"go.uber.org/zap"
)

const (
	genericPushTitle = "Educafric"
	// MetaClientRender 标记客户端需要根据模板和数据自行渲染
	MetaClientRender = "client_render"
)

var _ Channel = (*PushChannel)(nil)

// PushChannel 推送渠道。模板解析失败不视为错误，改为发送由客户端渲染的通用消息。
type PushChannel struct {
	baseChannel
}

func (c *PushChannel) Send(
	ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient,
) (domain.NotificationResult, error) {
	subject, body, err := c.render(payload, recipient)

	var msg provider.Message
	if err != nil {
		c.logger.Warn(
			"[educafric] push template unavailable, fallback to client rendering",
			zap.String("template", payload.Template.String()),
			zap.String("recipient_id", recipient.Id),
			zap.Error(err),
		)
		msg = c.message(payload, recipient, genericPushTitle, payload.Template.String())
		msg.Metadata = genericMetadata(payload)
	} else {
		msg = c.message(payload, recipient, subject, body)
	}

	receipt, err := c.transmit(ctx, msg)
	if err != nil {
		return domain.TransportFailedResult(recipient.Id, err), nil
	}
	return domain.DeliveredResult(recipient.Id, receipt.MessageId, c.now(), 0), nil
}

// genericMetadata 合并载荷元数据与模板数据，供客户端渲染
func genericMetadata(payload domain.NotificationPayload) map[string]string {
	meta := make(map[string]string, len(payload.Metadata)+len(payload.Data)+1)
	for k, v := range payload.Metadata {
		meta[k] = v
	}
	for k, v := range payload.Data {
		meta[k] = v
	}
	meta[MetaClientRender] = "true"
	return meta
}

func NewPushChannel(sb provider.SelectorBuilder, registry template.Registry, logger *zap.Logger, opts ...Option) *PushChannel {
	return &PushChannel{
		baseChannel: newBaseChannel(domain.ChannelPush, sb, registry, logger, opts...),
	}
}
