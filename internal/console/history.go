package console

import "sync"

// DefaultHistorySize is the number of samples kept per series.
const DefaultHistorySize = 60

// Series names recorded by the console.
const (
	SeriesRTT     = "rtt"
	SeriesCPU     = "cpu"
	SeriesBitrate = "bitrate"
)

// History keeps a short ring buffer per named series for sparklines. It is
// display state only; snapshots themselves are never retained.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[string]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history with the given buffer size per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		series: make(map[string]*ringBuffer),
	}
}

// Push appends v to the named series.
func (h *History) Push(name string, v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.series[name]
	if !ok {
		r = newRingBuffer(h.size)
		h.series[name] = r
	}
	r.push(v)
}

// Last returns up to count of the most recent values, oldest first.
func (h *History) Last(name string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.series[name]
	if !ok {
		return nil
	}
	return r.getLast(count)
}

// Len returns how many samples the named series holds.
func (h *History) Len(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if r, ok := h.series[name]; ok {
		return r.count
	}
	return 0
}

// Clear drops the named series.
func (h *History) Clear(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.series, name)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value is at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
