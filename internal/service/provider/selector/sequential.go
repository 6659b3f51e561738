package selector

import (
	"context"
	"fmt"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
)

var _ provider.Selector = (*SeqSelector)(nil)

// SeqSelector 按配置顺序依次返回供应商，用于主备切换。
type SeqSelector struct {
	index     int
	providers []provider.Provider
}

func (ss *SeqSelector) Next(_ context.Context, _ provider.Message) (provider.Provider, error) {
	if ss.index >= len(ss.providers) {
		return nil, fmt.Errorf("%w: tried %d providers", errs.ErrNoAvailableProvider, len(ss.providers))
	}

	p := ss.providers[ss.index]
	ss.index++
	return p, nil
}

var _ provider.SelectorBuilder = (*SeqSelectorBuilder)(nil)

type SeqSelectorBuilder struct {
	providers []provider.Provider
}

func (ssb *SeqSelectorBuilder) Build() (provider.Selector, error) {
	if len(ssb.providers) == 0 {
		return nil, fmt.Errorf("%w: no provider configured", errs.ErrNoAvailableProvider)
	}
	return &SeqSelector{
		providers: ssb.providers,
	}, nil
}

func NewSeqSelectorBuilder(providers ...provider.Provider) *SeqSelectorBuilder {
	return &SeqSelectorBuilder{
		providers: providers,
	}
}
