package simulate

import (
	"context"

	"github.com/google/uuid"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"go.uber.org/zap"
)

const MessageIdPrefix = "sim_"

var _ provider.Provider = (*Provider)(nil)

// Provider 模拟供应商，开发测试或离线环境下不调用外部服务，直接返回成功。
type Provider struct {
	logger *zap.Logger
}

func (p *Provider) Name() string {
	return "simulate"
}

func (p *Provider) Send(_ context.Context, msg provider.Message) (provider.Receipt, error) {
	p.logger.Debug(
		"[educafric] simulated send",
		zap.String("channel", msg.Channel.String()),
		zap.String("template", msg.Template.String()),
		zap.String("priority", msg.Priority.String()),
		zap.String("recipient_id", msg.Recipient.Id),
		zap.Int("body_len", len(msg.Body)),
	)
	return provider.Receipt{
		MessageId: MessageIdPrefix + uuid.NewString(),
		Provider:  p.Name(),
	}, nil
}

func NewProvider(logger *zap.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}
