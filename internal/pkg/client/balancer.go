package client

import (
	"sync/atomic"

	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/balancer/base"
)

// BalancerName 按分组轮询的负载均衡策略
const BalancerName = "educafric_group_round_robin"

func init() {
	balancer.Register(base.NewBalancerBuilder(BalancerName, &GroupRoundRobinBuilder{}, base.Config{HealthCheck: true}))
}

var _ base.PickerBuilder = (*GroupRoundRobinBuilder)(nil)

type GroupRoundRobinBuilder struct{}

func (b *GroupRoundRobinBuilder) Build(info base.PickerBuildInfo) balancer.Picker {
	if len(info.ReadySCs) == 0 {
		return base.NewErrPicker(balancer.ErrNoSubConnAvailable)
	}

	p := &GroupRoundRobinPicker{
		groups: make(map[string][]balancer.SubConn),
	}
	for sc, scInfo := range info.ReadySCs {
		p.all = append(p.all, sc)
		if scInfo.Address.Attributes == nil {
			continue
		}
		if group, ok := scInfo.Address.Attributes.Value(AttrGroup).(string); ok && group != "" {
			p.groups[group] = append(p.groups[group], sc)
		}
	}
	return p
}

var _ balancer.Picker = (*GroupRoundRobinPicker)(nil)

// GroupRoundRobinPicker 请求带分组时只在该分组内轮询，分组不存在时返回不可用
type GroupRoundRobinPicker struct {
	all    []balancer.SubConn
	groups map[string][]balancer.SubConn

	index atomic.Uint64
}

func (p *GroupRoundRobinPicker) Pick(info balancer.PickInfo) (balancer.PickResult, error) {
	candidates := p.all
	if group := groupOf(info.Ctx); group != "" {
		candidates = p.groups[group]
	}
	if len(candidates) == 0 {
		return balancer.PickResult{}, balancer.ErrNoSubConnAvailable
	}

	// index - 1 从 0 开始
	idx := p.index.Add(1) - 1
	return balancer.PickResult{
		SubConn: candidates[idx%uint64(len(candidates))],
	}, nil
}
