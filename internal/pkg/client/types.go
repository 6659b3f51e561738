package client

import "context"

const (
	// Scheme 注册中心解析器的 scheme，目标地址形如 educafric:///<service name>
	Scheme = "educafric"

	AttrGroup = "attr_group"
	AttrNode  = "attr_node"
)

type contextKeyGroup struct{}

// WithGroup 在 context.Context 内写入 group 信息，请求只会发往该分组的实例
func WithGroup(ctx context.Context, group string) context.Context {
	return context.WithValue(ctx, contextKeyGroup{}, group)
}

func groupOf(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	group, _ := ctx.Value(contextKeyGroup{}).(string)
	return group
}
