package isolation

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordPool struct {
	name  string
	calls *[]string
}

func (r recordPool) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	*r.calls = append(*r.calls, r.name+":prepare")
	return nil, nil
}

func (r recordPool) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	*r.calls = append(*r.calls, r.name+":exec")
	return nil, nil
}

func (r recordPool) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	*r.calls = append(*r.calls, r.name+":query")
	return nil, nil
}

func (r recordPool) QueryRowContext(context.Context, string, ...any) *sql.Row {
	*r.calls = append(*r.calls, r.name+":query_row")
	return nil
}

func TestConnPool_Routing(t *testing.T) {
	t.Parallel()

	var calls []string
	pool := NewConnPool(
		recordPool{name: "primary", calls: &calls},
		recordPool{name: "reporting", calls: &calls},
	)

	ctx := t.Context()
	dispatchCtx := WithDispatchPath(ctx)

	_, _ = pool.QueryContext(ctx, "SELECT 1")
	_, _ = pool.QueryContext(dispatchCtx, "SELECT 1")
	_ = pool.QueryRowContext(ctx, "SELECT 1")
	_, _ = pool.PrepareContext(dispatchCtx, "SELECT 1")
	_, _ = pool.ExecContext(ctx, "INSERT")

	assert.Equal(t, []string{
		"reporting:query",
		"primary:query",
		"reporting:query_row",
		"primary:prepare",
		"primary:exec",
	}, calls)

	assert.True(t, IsDispatchPath(dispatchCtx))
	assert.False(t, IsDispatchPath(ctx))
}

func TestNewConnPool_WithoutReporting(t *testing.T) {
	t.Parallel()

	var calls []string
	pool := NewConnPool(recordPool{name: "primary", calls: &calls}, nil)

	_, _ = pool.QueryContext(t.Context(), "SELECT 1")
	assert.Equal(t, []string{"primary:query"}, calls)
}
