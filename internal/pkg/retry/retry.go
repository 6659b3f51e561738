package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/JrMarcco/easy-kit/retry"
)

const (
	TypeNone               = "none"
	TypeFixedInterval      = "fixed_interval"
	TypeExponentialBackoff = "exponential_backoff"
)

type Config struct {
	Type               string                    `json:"type" mapstructure:"type"`
	FixedInterval      *FixedIntervalConfig      `json:"fixed_interval" mapstructure:"fixed_interval"`
	ExponentialBackoff *ExponentialBackoffConfig `json:"exponential_backoff" mapstructure:"exponential_backoff"`
}

type ExponentialBackoffConfig struct {
	InitInterval time.Duration `json:"init_interval" mapstructure:"init_interval"`
	MaxInterval  time.Duration `json:"max_interval" mapstructure:"max_interval"`
	MaxTimes     int32         `json:"max_times" mapstructure:"max_times"`
}

type FixedIntervalConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
	MaxTimes int32         `json:"max_times" mapstructure:"max_times"`
}

// NewRetryStrategy 根据配置创建重试策略，类型为空或 none 时返回 nil 表示不重试。
func NewRetryStrategy(cfg Config) (retry.Strategy, error) {
	switch cfg.Type {
	case "", TypeNone:
		return nil, nil
	case TypeFixedInterval:
		if cfg.FixedInterval == nil {
			return nil, fmt.Errorf("[educafric] missing fixed interval retry config")
		}
		return retry.NewFixedIntervalStrategy(cfg.FixedInterval.Interval, cfg.FixedInterval.MaxTimes)
	case TypeExponentialBackoff:
		if cfg.ExponentialBackoff == nil {
			return nil, fmt.Errorf("[educafric] missing exponential backoff retry config")
		}
		return retry.NewExponentialBackoffStrategy(
			cfg.ExponentialBackoff.InitInterval,
			cfg.ExponentialBackoff.MaxInterval,
			cfg.ExponentialBackoff.MaxTimes,
		)
	default:
		return nil, fmt.Errorf("[educafric] unknown retry strategy type: %s", cfg.Type)
	}
}

// Do 执行 fn，失败时按策略间隔重试，直到成功、达到最大次数或 ctx 结束。
//
// shouldRetry 为 nil 时所有错误都重试。返回最后一次执行的错误。
func Do(ctx context.Context, strategy retry.Strategy, fn func(ctx context.Context) error, shouldRetry func(err error) bool) error {
	var retried int32
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if strategy == nil || (shouldRetry != nil && !shouldRetry(err)) {
			return err
		}

		// 重试次数从 1 开始计数
		retried++
		interval, ok := strategy.NextWithRetried(retried)
		if !ok {
			return err
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
