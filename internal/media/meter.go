package media

import (
	"sync"
	"time"
)

// NopSink discards tracks.
type NopSink struct{}

func (NopSink) Bind(Track) {}
func (NopSink) Unbind()    {}

// MeterStats is what a Meter has seen on the bound track.
type MeterStats struct {
	Bound   bool
	TrackID string
	Codec   string
	Bytes   uint64
	Reads   uint64
	Since   time.Time
}

// Meter is a Sink that drains the bound track and counts payload bytes. The
// console shows its bitrate in place of decoded video.
type Meter struct {
	mu    sync.Mutex
	gen   uint64
	stats MeterStats
	now   func() time.Time
}

// NewMeter creates an unbound meter.
func NewMeter() *Meter {
	return &Meter{now: time.Now}
}

// Bind starts draining t. A previously bound track stops being counted.
func (m *Meter) Bind(t Track) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.stats = MeterStats{Bound: true, TrackID: t.ID(), Codec: t.Codec(), Since: m.now()}
	m.mu.Unlock()

	go m.drain(gen, t)
}

// Unbind stops counting. The drain goroutine exits when the track's reads
// fail, which happens once its session is closed.
func (m *Meter) Unbind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.stats = MeterStats{}
}

// Stats returns the counters for the bound track.
func (m *Meter) Stats() MeterStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Meter) drain(gen uint64, t Track) {
	buf := make([]byte, 1500)
	for {
		n, err := t.Read(buf)
		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			return
		}
		if err != nil {
			m.stats.Bound = false
			m.mu.Unlock()
			return
		}
		m.stats.Bytes += uint64(n)
		m.stats.Reads++
		m.mu.Unlock()
	}
}
