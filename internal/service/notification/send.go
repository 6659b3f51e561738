package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/channel"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/event"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/stats"
	"go.uber.org/zap"
)

const DefaultSendTimeout = 10 * time.Second

//go:generate mockgen -source=./send.go -destination=./mock/send_service.mock.go -package=notificationmock -typed SendService

// SendService 消息分发服务。
//
// 每个收件人返回一个结果，顺序与载荷中收件人顺序一致；
// 单个收件人发送失败（包括超时和 panic）不影响其他收件人。
type SendService interface {
	Send(ctx context.Context, payload domain.NotificationPayload) ([]domain.NotificationResult, error)
}

// ChannelDispatcher 按载荷渠道分发到具体渠道实现
type ChannelDispatcher interface {
	channel.Channel
	Supports(c domain.Channel) bool
}

var _ SendService = (*DefaultSendService)(nil)

type DefaultSendService struct {
	dispatcher ChannelDispatcher
	tracker    stats.Tracker
	publisher  event.Publisher
	metrics    *Metrics

	sendTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func (s *DefaultSendService) Send(ctx context.Context, payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if !s.dispatcher.Supports(payload.Channel) {
		return nil, fmt.Errorf("%w: channel %s is not configured", errs.ErrInvalidChannel, payload.Channel)
	}

	results := make([]domain.NotificationResult, len(payload.Recipients))
	for i, recipient := range payload.Recipients {
		start := s.now()
		res := s.sendOne(ctx, payload, recipient)

		results[i] = res
		s.tracker.Record(payload.Template, res)
		s.metrics.observe(payload, res, s.now().Sub(start))
	}

	if err := s.publisher.Publish(ctx, event.NewDeliveryEvent(payload, results, s.now())); err != nil {
		// 事件发布失败不影响发送结果
		s.logger.Error(
			"[educafric] failed to publish delivery event",
			zap.String("template", payload.Template.String()),
			zap.Error(err),
		)
	}
	return results, nil
}

type sendOutcome struct {
	res domain.NotificationResult
	err error
}

// sendOne 在独立 goroutine 中发送，超时或 panic 都转换为失败结果。
func (s *DefaultSendService) sendOne(ctx context.Context, payload domain.NotificationPayload, recipient domain.Recipient) domain.NotificationResult {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	// 带缓冲，超时返回后 goroutine 仍可写入并退出
	ch := make(chan sendOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- sendOutcome{err: fmt.Errorf("%w: panic: %v", errs.ErrFailedToSendNotification, r)}
			}
		}()
		res, err := s.dispatcher.Send(sendCtx, payload, recipient)
		ch <- sendOutcome{res: res, err: err}
	}()

	var outcome sendOutcome
	select {
	case outcome = <-ch:
	case <-sendCtx.Done():
		err := sendCtx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: after %s", errs.ErrSendTimeout, s.sendTimeout)
		}
		outcome = sendOutcome{err: err}
	}

	if outcome.err != nil {
		s.logger.Warn(
			"[educafric] failed to send notification to recipient",
			zap.String("channel", payload.Channel.String()),
			zap.String("template", payload.Template.String()),
			zap.String("recipient_id", recipient.Id),
			zap.Error(outcome.err),
		)
		if errors.Is(outcome.err, errs.ErrSendTimeout) || errors.Is(outcome.err, errs.ErrFailedToSendNotification) {
			return domain.TransportFailedResult(recipient.Id, outcome.err)
		}
		return domain.FailedResult(recipient.Id, outcome.err)
	}

	res := outcome.res
	if res.RecipientId == "" {
		res.RecipientId = recipient.Id
	}
	return res
}

// Option DefaultSendService 可选配置
type Option func(s *DefaultSendService)

func WithSendTimeout(timeout time.Duration) Option {
	return func(s *DefaultSendService) {
		if timeout > 0 {
			s.sendTimeout = timeout
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *DefaultSendService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *DefaultSendService) {
		s.now = now
	}
}

func NewDefaultSendService(
	dispatcher ChannelDispatcher,
	tracker stats.Tracker,
	publisher event.Publisher,
	logger *zap.Logger,
	opts ...Option,
) *DefaultSendService {
	s := &DefaultSendService{
		dispatcher:  dispatcher,
		tracker:     tracker,
		publisher:   publisher,
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
