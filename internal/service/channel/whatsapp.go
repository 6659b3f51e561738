package channel

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"go.uber.org/zap"
)

var _ Channel = (*WhatsAppChannel)(nil)

// WhatsAppChannel WhatsApp 渠道，消息不受短信段长限制，不做截断。
type WhatsAppChannel struct {
	baseChannel
}

func (c *WhatsAppChannel) Send(
	ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient,
) (domain.NotificationResult, error) {
	if err := c.checkContact(recipient); err != nil {
		return domain.NotificationResult{}, err
	}

	_, body, err := c.render(payload, recipient)
	if err != nil {
		return domain.NotificationResult{}, err
	}

	receipt, err := c.transmit(ctx, c.message(payload, recipient, "", body))
	if err != nil {
		return domain.TransportFailedResult(recipient.Id, err), nil
	}
	return domain.DeliveredResult(recipient.Id, receipt.MessageId, c.now(), 0), nil
}

func NewWhatsAppChannel(sb provider.SelectorBuilder, registry template.Registry, logger *zap.Logger, opts ...Option) *WhatsAppChannel {
	return &WhatsAppChannel{
		baseChannel: newBaseChannel(domain.ChannelWhatsApp, sb, registry, logger, opts...),
	}
}
