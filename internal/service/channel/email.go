package channel

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"go.uber.org/zap"
)

var _ Channel = (*EmailChannel)(nil)

type EmailChannel struct {
	baseChannel
}

func (c *EmailChannel) Send(
	ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient,
) (domain.NotificationResult, error) {
	if err := c.checkContact(recipient); err != nil {
		return domain.NotificationResult{}, err
	}

	subject, body, err := c.render(payload, recipient)
	if err != nil {
		return domain.NotificationResult{}, err
	}

	receipt, err := c.transmit(ctx, c.message(payload, recipient, subject, body))
	if err != nil {
		return domain.TransportFailedResult(recipient.Id, err), nil
	}
	return domain.DeliveredResult(recipient.Id, receipt.MessageId, c.now(), 0), nil
}

func NewEmailChannel(sb provider.SelectorBuilder, registry template.Registry, logger *zap.Logger, opts ...Option) *EmailChannel {
	return &EmailChannel{
		baseChannel: newBaseChannel(domain.ChannelEmail, sb, registry, logger, opts...),
	}
}
