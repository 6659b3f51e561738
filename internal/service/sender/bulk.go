package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/bitring"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize     = 10
	DefaultBatchInterval = time.Second
)

//go:generate mockgen -source=./bulk.go -destination=./mock/bulk.mock.go -package=sendermock -typed BulkSender

// BulkSender 批量发送器
//
// 载荷按批次切分，批内并发发送，批次之间按间隔暂停以保护下游通道。
// 返回结果与载荷顺序一致。
type BulkSender interface {
	BulkSend(ctx context.Context, payloads []domain.NotificationPayload) ([][]domain.NotificationResult, error)
}

// Config 批量发送配置
type Config struct {
	BatchSize        int           `mapstructure:"batch_size"`
	BatchInterval    time.Duration `mapstructure:"batch_interval"`
	MaxBatchInterval time.Duration `mapstructure:"max_batch_interval"`

	// 失败窗口
	WindowSize        int     `mapstructure:"window_size"`
	WindowConsecutive int     `mapstructure:"window_consecutive"`
	WindowRate        float64 `mapstructure:"window_rate"`
}

// SleepFunc 批次间暂停，ctx 取消时提前返回
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ BulkSender = (*DefaultBulkSender)(nil)

type DefaultBulkSender struct {
	svc notification.SendService

	batchSize   int
	interval    time.Duration
	maxInterval time.Duration

	window *bitring.Window
	sleep  SleepFunc
	logger *zap.Logger
}

func (s *DefaultBulkSender) BulkSend(ctx context.Context, payloads []domain.NotificationPayload) ([][]domain.NotificationResult, error) {
	// 先整体校验，避免发送到一半才发现调用方错误
	for i, payload := range payloads {
		if err := payload.Validate(); err != nil {
			return nil, fmt.Errorf("payload at index %d: %w", i, err)
		}
	}

	results := make([][]domain.NotificationResult, len(payloads))
	for start := 0; start < len(payloads); start += s.batchSize {
		if start > 0 {
			pause := s.nextInterval()
			if err := s.sleep(ctx, pause); err != nil {
				return nil, err
			}
		}

		end := min(start+s.batchSize, len(payloads))
		s.sendBatch(ctx, payloads[start:end], results[start:end])
	}
	return results, nil
}

func (s *DefaultBulkSender) sendBatch(ctx context.Context, batch []domain.NotificationPayload, out [][]domain.NotificationResult) {
	var eg errgroup.Group
	for i := range batch {
		eg.Go(func() error {
			out[i] = s.sendPayload(ctx, batch[i])
			return nil
		})
	}
	_ = eg.Wait()

	// 调用方错误不代表下游异常，不计入失败窗口
	for _, results := range out {
		for _, res := range results {
			if !res.Success && !res.TransportFailure {
				continue
			}
			s.window.Record(!res.Success)
		}
	}
}

// sendPayload 单个载荷失败时转换为每个收件人的失败结果，不影响同批其他载荷
func (s *DefaultBulkSender) sendPayload(ctx context.Context, payload domain.NotificationPayload) []domain.NotificationResult {
	results, err := s.svc.Send(ctx, payload)
	if err == nil {
		return results
	}

	s.logger.Error(
		"[educafric] failed to send payload in batch",
		zap.String("channel", payload.Channel.String()),
		zap.String("template", payload.Template.String()),
		zap.Error(err),
	)

	results = make([]domain.NotificationResult, len(payload.Recipients))
	for i, r := range payload.Recipients {
		results[i] = domain.FailedResult(r.Id, err)
	}
	return results
}

// nextInterval 失败窗口触发时暂停时间翻倍，不超过 maxInterval
func (s *DefaultBulkSender) nextInterval() time.Duration {
	if !s.window.Tripped() {
		return s.interval
	}

	pause := min(s.interval*2, s.maxInterval)
	s.logger.Warn(
		"[educafric] failure window tripped, slowing down batches",
		zap.Duration("pause", pause),
	)
	s.window.Reset()
	return pause
}

// BulkOption DefaultBulkSender 可选配置
type BulkOption func(s *DefaultBulkSender)

func WithSleep(sleep SleepFunc) BulkOption {
	return func(s *DefaultBulkSender) {
		s.sleep = sleep
	}
}

func NewDefaultBulkSender(svc notification.SendService, cfg Config, logger *zap.Logger, opts ...BulkOption) *DefaultBulkSender {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchInterval <= 0 {
		cfg.BatchInterval = DefaultBatchInterval
	}
	if cfg.MaxBatchInterval < cfg.BatchInterval {
		cfg.MaxBatchInterval = cfg.BatchInterval * 2
	}

	s := &DefaultBulkSender{
		svc:         svc,
		batchSize:   cfg.BatchSize,
		interval:    cfg.BatchInterval,
		maxInterval: cfg.MaxBatchInterval,
		window:      bitring.NewWindow(cfg.WindowSize, cfg.WindowConsecutive, cfg.WindowRate),
		sleep:       sleepCtx,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
