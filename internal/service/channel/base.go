package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JrMarcco/easy-kit/retry"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	retrypkg "github.com/simonmuehling/educafric-platform-sub010/internal/pkg/retry"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"go.uber.org/zap"
)

// Option 渠道可选配置
type Option func(bc *baseChannel)

// WithRetryStrategy 供应商网络错误时的重试策略，供应商明确拒绝的请求不重试。
func WithRetryStrategy(strategy retry.Strategy) Option {
	return func(bc *baseChannel) {
		bc.retry = strategy
	}
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(bc *baseChannel) {
		bc.now = now
	}
}

type baseChannel struct {
	channel  domain.Channel
	sb       provider.SelectorBuilder
	registry template.Registry
	retry    retry.Strategy
	now      func() time.Time
	logger   *zap.Logger
}

func (bc *baseChannel) checkContact(recipient domain.Recipient) error {
	if recipient.HasContactFor(bc.channel) {
		return nil
	}
	field := "phone number"
	if bc.channel.RequiresEmail() {
		field = "email address"
	}
	return fmt.Errorf("%w: %s required for %s", errs.ErrMissingContact, field, bc.channel)
}

// render 按收件人偏好语言解析模板并渲染标题和正文
func (bc *baseChannel) render(payload domain.NotificationPayload, recipient domain.Recipient) (subject, body string, err error) {
	f, err := bc.registry.Resolve(payload.Template, recipient.Language())
	if err != nil {
		return "", "", err
	}
	body, err = f.Format(payload.Data)
	if err != nil {
		return "", "", err
	}
	subject, err = f.Subject(payload.Data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func (bc *baseChannel) message(payload domain.NotificationPayload, recipient domain.Recipient, subject, body string) provider.Message {
	return provider.Message{
		Channel:   bc.channel,
		Template:  payload.Template,
		Priority:  payload.Priority,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Metadata:  payload.Metadata,
	}
}

// transmit 依次尝试供应商，单个供应商内部按重试策略重试。
func (bc *baseChannel) transmit(ctx context.Context, msg provider.Message) (provider.Receipt, error) {
	selector, err := bc.sb.Build()
	if err != nil {
		return provider.Receipt{}, fmt.Errorf("%w: %w", errs.ErrFailedToSendNotification, err)
	}

	var sendErrs []error
	for {
		p, selectErr := selector.Next(ctx, msg)
		if selectErr != nil {
			return provider.Receipt{}, errors.Join(append(sendErrs, selectErr)...)
		}

		var receipt provider.Receipt
		sendErr := retrypkg.Do(ctx, bc.retry, func(ctx context.Context) error {
			var err error
			receipt, err = p.Send(ctx, msg)
			return err
		}, isRetryable)
		if sendErr == nil {
			return receipt, nil
		}

		// 当前供应商发送失败，切换到下一个供应商
		bc.logger.Warn(
			"[educafric] provider failed to send notification",
			zap.String("channel", bc.channel.String()),
			zap.String("provider", p.Name()),
			zap.String("recipient_id", msg.Recipient.Id),
			zap.Error(sendErr),
		)
		sendErrs = append(sendErrs, fmt.Errorf("%s: %w", p.Name(), sendErr))

		if ctx.Err() != nil {
			return provider.Receipt{}, errors.Join(append(sendErrs, ctx.Err())...)
		}
	}
}

func isRetryable(err error) bool {
	return !errors.Is(err, errs.ErrProviderFailure) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func newBaseChannel(
	channel domain.Channel, sb provider.SelectorBuilder, registry template.Registry, logger *zap.Logger, opts ...Option,
) baseChannel {
	bc := baseChannel{
		channel:  channel,
		sb:       sb,
		registry: registry,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(&bc)
	}
	return bc
}
