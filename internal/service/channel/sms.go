package channel

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/policy"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"go.uber.org/zap"
)

var _ Channel = (*SmsChannel)(nil)

// SmsChannel 短信渠道，发送前按受限网络策略截断消息并估算费用。
type SmsChannel struct {
	baseChannel
	policy policy.NetworkPolicy
}

func (c *SmsChannel) Send(
	ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient,
) (domain.NotificationResult, error) {
	if err := c.checkContact(recipient); err != nil {
		return domain.NotificationResult{}, err
	}

	_, body, err := c.render(payload, recipient)
	if err != nil {
		return domain.NotificationResult{}, err
	}

	// 先截断再估算费用，保证费用按单段计算
	optimized := c.policy.Optimize(body)
	cost := c.policy.EstimateCost(optimized, recipient.Phone)

	receipt, err := c.transmit(ctx, c.message(payload, recipient, "", optimized))
	if err != nil {
		return domain.TransportFailedResult(recipient.Id, err), nil
	}

	c.logger.Debug(
		"[educafric] sms sent",
		zap.String("priority", payload.Priority.String()),
		zap.String("recipient_id", recipient.Id),
		zap.String("provider", receipt.Provider),
		zap.Float64("cost", cost),
	)
	return domain.DeliveredResult(recipient.Id, receipt.MessageId, c.now(), cost), nil
}

func NewSmsChannel(
	sb provider.SelectorBuilder,
	registry template.Registry,
	networkPolicy policy.NetworkPolicy,
	logger *zap.Logger,
	opts ...Option,
) *SmsChannel {
	return &SmsChannel{
		baseChannel: newBaseChannel(domain.ChannelSMS, sb, registry, logger, opts...),
		policy:      networkPolicy,
	}
}
