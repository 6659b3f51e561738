package bitring

import (
	"sync"
)

const (
	wordBits  = 64
	wordMask  = wordBits - 1
	wordShift = 6

	DefaultSize        = 128
	DefaultConsecutive = 3
	DefaultRate        = 0.5
)

// Window 基于比特环的失败滑动窗口。
//
// 每次记录一个结果（1 表示失败），最近 consecutive 次全部失败
// 或窗口内失败率超过 rate 时认为触发。
type Window struct {
	mu sync.RWMutex

	words []uint64
	size  int
	next  int
	full  bool

	failures    int
	consecutive int
	rate        float64
}

// Record 记录一次结果
func (w *Window) Record(failed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 环已写满时先扣除被覆盖的旧值
	if w.full && w.get(w.next) {
		w.failures--
	}
	w.set(w.next, failed)
	if failed {
		w.failures++
	}

	w.next++
	if w.next == w.size {
		w.next = 0
		w.full = true
	}
}

// Tripped 判断是否达到失败阈值
func (w *Window) Tripped() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := w.len()
	if n == 0 {
		return false
	}

	if n >= w.consecutive && w.tailFailed() {
		return true
	}
	return float64(w.failures)/float64(n) > w.rate
}

// Reset 清空窗口
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	clear(w.words)
	w.next = 0
	w.full = false
	w.failures = 0
}

func (w *Window) tailFailed() bool {
	for i := 1; i <= w.consecutive; i++ {
		if !w.get((w.next - i + w.size) % w.size) {
			return false
		}
	}
	return true
}

func (w *Window) len() int {
	if w.full {
		return w.size
	}
	return w.next
}

func (w *Window) get(idx int) bool {
	return (w.words[idx>>wordShift]>>uint(idx&wordMask))&1 == 1
}

func (w *Window) set(idx int, val bool) {
	bit := uint64(1) << uint(idx&wordMask)
	if val {
		w.words[idx>>wordShift] |= bit
		return
	}
	w.words[idx>>wordShift] &^= bit
}

func NewWindow(size int, consecutive int, rate float64) *Window {
	if size <= 0 {
		size = DefaultSize
	}
	if consecutive <= 0 {
		consecutive = DefaultConsecutive
	}
	if consecutive > size {
		consecutive = size
	}
	if rate <= 0 {
		rate = DefaultRate
	}
	if rate > 1 {
		rate = 1
	}

	return &Window{
		words:       make([]uint64, (size+wordMask)/wordBits),
		size:        size,
		consecutive: consecutive,
		rate:        rate,
	}
}
