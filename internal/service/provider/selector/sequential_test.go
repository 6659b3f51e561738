package selector

import (
	"context"
	"testing"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider string

func (n namedProvider) Name() string { return string(n) }

func (n namedProvider) Send(context.Context, provider.Message) (provider.Receipt, error) {
	return provider.Receipt{Provider: string(n)}, nil
}

func TestSeqSelector_Next(t *testing.T) {
	t.Parallel()

	builder := NewSeqSelectorBuilder(namedProvider("primary"), namedProvider("backup"))

	s, err := builder.Build()
	require.NoError(t, err)

	p, err := s.Next(t.Context(), provider.Message{})
	require.NoError(t, err)
	assert.Equal(t, "primary", p.Name())

	p, err = s.Next(t.Context(), provider.Message{})
	require.NoError(t, err)
	assert.Equal(t, "backup", p.Name())

	_, err = s.Next(t.Context(), provider.Message{})
	assert.ErrorIs(t, err, errs.ErrNoAvailableProvider)

	// 每次 Build 都是独立的选择器
	s, err = builder.Build()
	require.NoError(t, err)
	p, err = s.Next(t.Context(), provider.Message{})
	require.NoError(t, err)
	assert.Equal(t, "primary", p.Name())
}

func TestSeqSelectorBuilder_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewSeqSelectorBuilder().Build()
	assert.ErrorIs(t, err, errs.ErrNoAvailableProvider)
}
