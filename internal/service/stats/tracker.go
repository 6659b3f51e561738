package stats

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

const shardCnt = 16

// Tracker 按模板累计发送结果，统计数据按需计算。
type Tracker interface {
	Record(key domain.TemplateKey, res domain.NotificationResult)
	Stats(key domain.TemplateKey) domain.DeliveryStats
	AllStats() map[domain.TemplateKey]domain.DeliveryStats
}

var _ Tracker = (*ShardedTracker)(nil)

type shard struct {
	mu      sync.RWMutex
	results map[domain.TemplateKey][]domain.NotificationResult
}

// ShardedTracker 以模板 key 的哈希值分段加锁，降低并发分发时的锁竞争。
type ShardedTracker struct {
	shards [shardCnt]*shard
}

func (t *ShardedTracker) Record(key domain.TemplateKey, res domain.NotificationResult) {
	s := t.shardOf(key)

	s.mu.Lock()
	s.results[key] = append(s.results[key], res)
	s.mu.Unlock()
}

func (t *ShardedTracker) Stats(key domain.TemplateKey) domain.DeliveryStats {
	s := t.shardOf(key)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Aggregate(s.results[key])
}

func (t *ShardedTracker) AllStats() map[domain.TemplateKey]domain.DeliveryStats {
	res := make(map[domain.TemplateKey]domain.DeliveryStats)
	for _, s := range t.shards {
		s.mu.RLock()
		for key, results := range s.results {
			res[key] = Aggregate(results)
		}
		s.mu.RUnlock()
	}
	return res
}

func (t *ShardedTracker) shardOf(key domain.TemplateKey) *shard {
	return t.shards[xxhash.Sum64String(key.String())%shardCnt]
}

// Aggregate 计算统计数据，结果为空时返回零值而不是除零。
func Aggregate(results []domain.NotificationResult) domain.DeliveryStats {
	total := len(results)
	successful, failed := domain.CountResults(results)

	var totalCost float64
	for _, res := range results {
		totalCost += res.Cost
	}

	stats := domain.DeliveryStats{
		Total:       total,
		Successful:  successful,
		Failed:      failed,
		SuccessRate: "0%",
		TotalCost:   fmt.Sprintf("%.2f", totalCost),
		AverageCost: "0",
	}
	if total > 0 {
		stats.SuccessRate = fmt.Sprintf("%.2f%%", float64(successful)/float64(total)*100)
		stats.AverageCost = fmt.Sprintf("%.3f", totalCost/float64(total))
	}
	return stats
}

func NewShardedTracker() *ShardedTracker {
	t := &ShardedTracker{}
	for i := range t.shards {
		t.shards[i] = &shard{
			results: make(map[domain.TemplateKey][]domain.NotificationResult),
		}
	}
	return t
}
