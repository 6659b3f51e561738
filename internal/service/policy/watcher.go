package policy

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// RateUpdate 费率表变更事件，Err 不为空表示本次变更无法解析。
type RateUpdate struct {
	Table RateTable
	Err   error
}

// RateSource 费率表来源（配置中心）
type RateSource interface {
	// Load 读取当前费率表，未配置时 found 为 false。
	Load(ctx context.Context) (table RateTable, found bool, err error)
	// Watch 持续推送费率表变更，ctx 结束后关闭 channel。
	Watch(ctx context.Context) <-chan RateUpdate
}

// RateUpdater 可热更新费率表的策略
type RateUpdater interface {
	UpdateRates(table RateTable) error
}

// RateWatcher 监听配置中心，将费率表变更应用到网络策略。
//
// 非法的费率表只记录日志，继续沿用当前费率。
type RateWatcher struct {
	updater RateUpdater
	source  RateSource
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (w *RateWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return nil
	}

	table, found, err := w.source.Load(ctx)
	if err != nil {
		return err
	}
	if found {
		w.apply(table)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(watchCtx, w.done)
	return nil
}

func (w *RateWatcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ch := w.source.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			if update.Err != nil {
				w.logger.Warn("[educafric] failed to decode rate table", zap.Error(update.Err))
				continue
			}
			w.apply(update.Table)
		}
	}
}

func (w *RateWatcher) apply(table RateTable) {
	if err := w.updater.UpdateRates(table); err != nil {
		w.logger.Warn("[educafric] rejected rate table", zap.Error(err))
		return
	}
	w.logger.Info(
		"[educafric] rate table updated",
		zap.Float64("default", table.Default),
		zap.Int("prefixes", len(table.Prefixes)),
	)
}

// Stop 停止监听并等待后台协程退出
func (w *RateWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func NewRateWatcher(updater RateUpdater, source RateSource, logger *zap.Logger) *RateWatcher {
	return &RateWatcher{
		updater: updater,
		source:  source,
		logger:  logger,
	}
}
