package policy

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicy(t *testing.T) *DefaultNetworkPolicy {
	t.Helper()

	p, err := NewDefaultNetworkPolicy(DefaultRateTable())
	require.NoError(t, err)
	return p
}

func TestDefaultNetworkPolicy_Optimize(t *testing.T) {
	t.Parallel()

	p := newPolicy(t)

	for _, n := range []int{0, 1, 80, 159, 160, 161, 170, 320, 1000} {
		msg := strings.Repeat("a", n)
		got := p.Optimize(msg)

		if n <= SegmentLength {
			assert.Equal(t, msg, got, "length %d", n)
			continue
		}
		assert.LessOrEqual(t, utf8.RuneCountInString(got), SegmentLength, "length %d", n)
		assert.True(t, strings.HasSuffix(got, TruncateMarker), "length %d", n)
		assert.Equal(t, strings.Repeat("a", 157)+TruncateMarker, got)
	}
}

func TestDefaultNetworkPolicy_OptimizeCountsRunes(t *testing.T) {
	t.Parallel()

	p := newPolicy(t)

	// 160 个带重音字符按字符计算不应被截断
	msg := strings.Repeat("é", SegmentLength)
	assert.Equal(t, msg, p.Optimize(msg))

	long := strings.Repeat("é", SegmentLength+1)
	got := p.Optimize(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, SegmentLength, utf8.RuneCountInString(got))
}

func TestDefaultNetworkPolicy_EstimateCost(t *testing.T) {
	t.Parallel()

	p := newPolicy(t)

	tcs := []struct {
		name  string
		msg   string
		phone string
		want  float64
	}{
		{name: "empty message", msg: "", phone: "+237600000000", want: 0},
		{name: "one domestic segment", msg: strings.Repeat("a", 160), phone: "+237600000000", want: 0.03},
		{name: "two domestic segments", msg: strings.Repeat("a", 161), phone: "+237600000000", want: 0.06},
		{name: "one international segment", msg: "hello", phone: "+33600000000", want: 0.05},
		{name: "three international segments", msg: strings.Repeat("a", 400), phone: "+2250700000000", want: 0.15},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, p.EstimateCost(tc.msg, tc.phone), 1e-9)
		})
	}
}

func TestDefaultNetworkPolicy_CostMonotonicOnPrefix(t *testing.T) {
	t.Parallel()

	p := newPolicy(t)

	full := strings.Repeat("Bonjour parents, ", 40)
	prev := -1.0
	for i := 0; i <= len(full); i += 7 {
		cost := p.EstimateCost(full[:i], "+237600000000")
		assert.GreaterOrEqual(t, cost, 0.0)
		assert.GreaterOrEqual(t, cost, prev)
		prev = cost
	}
}

func TestDefaultNetworkPolicy_OptimizedMessageCostsOneSegment(t *testing.T) {
	t.Parallel()

	p := newPolicy(t)

	msg := strings.Repeat("x", 170)
	assert.Equal(t, 2, p.Segments(msg))

	optimized := p.Optimize(msg)
	assert.Equal(t, 1, p.Segments(optimized))
	assert.InDelta(t, 0.03, p.EstimateCost(optimized, "+237699999999"), 1e-9)
}

func TestDefaultNetworkPolicy_UpdateRates(t *testing.T) {
	t.Parallel()

	p := newPolicy(t)

	err := p.UpdateRates(RateTable{
		Default: 0.08,
		Prefixes: map[string]float64{
			"+237":  0.03,
			"+2376": 0.02,
			"+225":  0.04,
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.02, p.EstimateCost("hi", "+237650000000"), 1e-9)
	assert.InDelta(t, 0.03, p.EstimateCost("hi", "+237250000000"), 1e-9)
	assert.InDelta(t, 0.04, p.EstimateCost("hi", "+2250700000000"), 1e-9)
	assert.InDelta(t, 0.08, p.EstimateCost("hi", "+33600000000"), 1e-9)

	err = p.UpdateRates(RateTable{Default: -1})
	assert.ErrorIs(t, err, errs.ErrInvalidParam)
	// 非法费率表不生效
	assert.InDelta(t, 0.08, p.RateTable().Default, 1e-9)
}
