package bitring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Tripped(t *testing.T) {
	t.Parallel()

	type record struct {
		index       int
		failed      bool
		wantTripped bool
	}

	tcs := []struct {
		name        string
		size        int
		consecutive int
		rate        float64
		records     []record
	}{
		{
			name:        "all delivered",
			size:        4,
			consecutive: 2,
			rate:        0.5,
			records: []record{
				{index: 1, failed: false, wantTripped: false},
				{index: 2, failed: false, wantTripped: false},
				{index: 3, failed: false, wantTripped: false},
				{index: 4, failed: false, wantTripped: false},
			},
		}, {
			name:        "consecutive failures",
			size:        32,
			consecutive: 4,
			rate:        1,
			records: []record{
				{index: 1, failed: true, wantTripped: false},
				{index: 2, failed: true, wantTripped: false},
				{index: 3, failed: true, wantTripped: false},
				{index: 4, failed: true, wantTripped: true},
			},
		}, {
			name:        "failure rate",
			size:        32,
			consecutive: 8,
			rate:        0.5,
			records: []record{
				{index: 1, failed: false, wantTripped: false},
				{index: 2, failed: false, wantTripped: false},
				{index: 3, failed: true, wantTripped: false},
				{index: 4, failed: true, wantTripped: false},
				{index: 5, failed: false, wantTripped: false},
				{index: 6, failed: true, wantTripped: false},
				{index: 7, failed: true, wantTripped: true},
			},
		}, {
			name:        "ring wraps around",
			size:        8,
			consecutive: 3,
			rate:        0.5,
			records: []record{
				{index: 1, failed: false, wantTripped: false},
				{index: 2, failed: true, wantTripped: false},
				{index: 3, failed: false, wantTripped: false},
				{index: 4, failed: false, wantTripped: false},
				{index: 5, failed: true, wantTripped: false},
				{index: 6, failed: true, wantTripped: false},
				{index: 7, failed: false, wantTripped: false},
				{index: 8, failed: true, wantTripped: false},
				{index: 9, failed: true, wantTripped: true},
				{index: 10, failed: false, wantTripped: false},
				{index: 11, failed: true, wantTripped: true},
				{index: 12, failed: false, wantTripped: true},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := NewWindow(tc.size, tc.consecutive, tc.rate)
			for _, r := range tc.records {
				w.Record(r.failed)
				assert.Equal(t, r.wantTripped, w.Tripped(), "index of record: %d", r.index)
			}
		})
	}
}

func TestWindow_Reset(t *testing.T) {
	t.Parallel()

	w := NewWindow(4, 2, 0.5)
	w.Record(true)
	w.Record(true)
	assert.True(t, w.Tripped())

	w.Reset()
	assert.False(t, w.Tripped())

	w.Record(false)
	assert.False(t, w.Tripped())
}
