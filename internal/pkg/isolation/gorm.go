package isolation

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type dispatchPathKey struct{}

var _ gorm.ConnPool = (*ConnPool)(nil)

// ConnPool 按业务路径隔离的 gorm 连接池。
//
// 分发链路（收件人解析、通讯记录写入）走 primary，
// 报表查询（统计、家长通讯列表）走 reporting，避免报表慢查询拖慢分发。
type ConnPool struct {
	primary   gorm.ConnPool
	reporting gorm.ConnPool
}

func (p *ConnPool) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return p.pick(ctx).PrepareContext(ctx, query)
}

func (p *ConnPool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	// 写操作始终走 primary
	return p.primary.ExecContext(ctx, query, args...)
}

func (p *ConnPool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.pick(ctx).QueryContext(ctx, query, args...)
}

func (p *ConnPool) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return p.pick(ctx).QueryRowContext(ctx, query, args...)
}

func (p *ConnPool) pick(ctx context.Context) gorm.ConnPool {
	if IsDispatchPath(ctx) {
		return p.primary
	}
	return p.reporting
}

// NewConnPool reporting 为 nil 时所有请求走 primary
func NewConnPool(primary, reporting gorm.ConnPool) *ConnPool {
	if reporting == nil {
		reporting = primary
	}
	return &ConnPool{
		primary:   primary,
		reporting: reporting,
	}
}

// WithDispatchPath 标记当前请求处于分发链路
func WithDispatchPath(ctx context.Context) context.Context {
	return context.WithValue(ctx, dispatchPathKey{}, true)
}

func IsDispatchPath(ctx context.Context) bool {
	v, _ := ctx.Value(dispatchPathKey{}).(bool)
	return v
}
