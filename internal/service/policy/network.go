package policy

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
)

const (
	SegmentLength   = 160 // 单条短信最大字符数
	TruncateMarker  = "..."
	truncatedLength = SegmentLength - 3

	DefaultRate         = 0.05
	DefaultDomesticCode = "+237"
	DefaultDomesticRate = 0.03
)

// RateTable 按号码前缀计算单段费率，最长前缀优先。
type RateTable struct {
	Default  float64            `mapstructure:"default" json:"default"`
	Prefixes map[string]float64 `mapstructure:"prefixes" json:"prefixes"`
}

func (t RateTable) Validate() error {
	if t.Default < 0 {
		return fmt.Errorf("%w: default rate should not be negative", errs.ErrInvalidParam)
	}
	for prefix, rate := range t.Prefixes {
		if prefix == "" {
			return fmt.Errorf("%w: rate prefix should not be empty", errs.ErrInvalidParam)
		}
		if rate < 0 {
			return fmt.Errorf("%w: rate of prefix %s should not be negative", errs.ErrInvalidParam, prefix)
		}
	}
	return nil
}

func DefaultRateTable() RateTable {
	return RateTable{
		Default: DefaultRate,
		Prefixes: map[string]float64{
			DefaultDomesticCode: DefaultDomesticRate,
		},
	}
}

// NetworkPolicy 受限网络下的短信优化与费用估算策略。
type NetworkPolicy interface {
	// Optimize 超过单段长度的消息截断为 157 个字符加截断标记，否则原样返回。
	Optimize(msg string) string
	// Segments 消息占用的短信段数
	Segments(msg string) int
	// EstimateCost 估算发送费用：段数 * 号码前缀对应的单段费率。
	EstimateCost(msg, phone string) float64
}

var _ NetworkPolicy = (*DefaultNetworkPolicy)(nil)

type DefaultNetworkPolicy struct {
	mu sync.RWMutex

	defaultRate float64
	prefixes    []string // 按长度降序
	rates       map[string]float64
}

// Optimize 长度按字符（rune）计算，法语重音字符算一个字符。
func (p *DefaultNetworkPolicy) Optimize(msg string) string {
	if utf8.RuneCountInString(msg) <= SegmentLength {
		return msg
	}

	var sb strings.Builder
	sb.Grow(len(msg))
	cnt := 0
	for _, r := range msg {
		if cnt == truncatedLength {
			break
		}
		sb.WriteRune(r)
		cnt++
	}
	sb.WriteString(TruncateMarker)
	return sb.String()
}

func (p *DefaultNetworkPolicy) Segments(msg string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(msg)) / SegmentLength))
}

func (p *DefaultNetworkPolicy) EstimateCost(msg, phone string) float64 {
	return float64(p.Segments(msg)) * p.rateOf(phone)
}

func (p *DefaultNetworkPolicy) rateOf(phone string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, prefix := range p.prefixes {
		if strings.HasPrefix(phone, prefix) {
			return p.rates[prefix]
		}
	}
	return p.defaultRate
}

// UpdateRates 替换费率表，用于配置中心推送变更。
func (p *DefaultNetworkPolicy) UpdateRates(table RateTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	prefixes := make([]string, 0, len(table.Prefixes))
	rates := make(map[string]float64, len(table.Prefixes))
	for prefix, rate := range table.Prefixes {
		prefixes = append(prefixes, prefix)
		rates[prefix] = rate
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) == len(prefixes[j]) {
			return prefixes[i] < prefixes[j]
		}
		return len(prefixes[i]) > len(prefixes[j])
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	p.defaultRate = table.Default
	p.prefixes = prefixes
	p.rates = rates
	return nil
}

// RateTable 返回当前费率表的副本
func (p *DefaultNetworkPolicy) RateTable() RateTable {
	p.mu.RLock()
	defer p.mu.RUnlock()

	prefixes := make(map[string]float64, len(p.rates))
	for prefix, rate := range p.rates {
		prefixes[prefix] = rate
	}
	return RateTable{
		Default:  p.defaultRate,
		Prefixes: prefixes,
	}
}

func NewDefaultNetworkPolicy(table RateTable) (*DefaultNetworkPolicy, error) {
	p := &DefaultNetworkPolicy{}
	if err := p.UpdateRates(table); err != nil {
		return nil, err
	}
	return p, nil
}
