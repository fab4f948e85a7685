// Package metrics exposes console-side Prometheus counters for the state feed,
// the media session and operator commands.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes used as the "result" label.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Collector owns a private registry so several consoles (or tests) can run
// in one process. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	feedConnected prometheus.Gauge
	mediaLive     prometheus.Gauge

	snapshots     prometheus.Counter
	parseErrors   prometheus.Counter
	reconnects    prometheus.Counter
	mediaRestarts prometheus.Counter
	negotiateErrs prometheus.Counter
	commands      *prometheus.CounterVec

	mu     sync.Mutex
	totals Totals
}

// Totals is a plain copy of the counters, for display.
type Totals struct {
	Snapshots          int64
	ParseErrors        int64
	Reconnects         int64
	MediaRestarts      int64
	NegotiationErrors  int64
	CommandsSent       int64
	CommandsFailed     int64
	LastSnapshotAt     time.Time
	LastReconnectAt    time.Time
	LastMediaRestartAt time.Time
}

// NewCollector registers every console metric on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		feedConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nevconsole_feed_connected",
			Help: "1 while the state feed transport is open",
		}),
		mediaLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nevconsole_media_live",
			Help: "1 while the media session is live",
		}),
		snapshots: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevconsole_snapshots_total",
			Help: "State snapshots applied",
		}),
		parseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevconsole_snapshot_parse_errors_total",
			Help: "State frames dropped because they did not parse",
		}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevconsole_feed_reconnects_total",
			Help: "State feed reconnect attempts",
		}),
		mediaRestarts: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevconsole_media_restarts_total",
			Help: "Media session rebuilds",
		}),
		negotiateErrs: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevconsole_media_negotiation_failures_total",
			Help: "Failed media negotiations and terminal session phases",
		}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nevconsole_commands_total",
			Help: "Operator commands by endpoint and result",
		}, []string{"endpoint", "result"}),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// FeedConnected records the state feed health.
func (c *Collector) FeedConnected(up bool) {
	if c == nil {
		return
	}
	c.feedConnected.Set(boolGauge(up))
}

// MediaLive records whether the media session is live.
func (c *Collector) MediaLive(live bool) {
	if c == nil {
		return
	}
	c.mediaLive.Set(boolGauge(live))
}

// SnapshotApplied counts an accepted snapshot.
func (c *Collector) SnapshotApplied() {
	if c == nil {
		return
	}
	c.snapshots.Inc()
	c.mu.Lock()
	c.totals.Snapshots++
	c.totals.LastSnapshotAt = time.Now()
	c.mu.Unlock()
}

// ParseError counts a dropped frame.
func (c *Collector) ParseError() {
	if c == nil {
		return
	}
	c.parseErrors.Inc()
	c.mu.Lock()
	c.totals.ParseErrors++
	c.mu.Unlock()
}

// Reconnect counts a reconnect attempt.
func (c *Collector) Reconnect() {
	if c == nil {
		return
	}
	c.reconnects.Inc()
	c.mu.Lock()
	c.totals.Reconnects++
	c.totals.LastReconnectAt = time.Now()
	c.mu.Unlock()
}

// MediaRestart counts a media session rebuild.
func (c *Collector) MediaRestart() {
	if c == nil {
		return
	}
	c.mediaRestarts.Inc()
	c.mu.Lock()
	c.totals.MediaRestarts++
	c.totals.LastMediaRestartAt = time.Now()
	c.mu.Unlock()
}

// NegotiationFailed counts a failed negotiation.
func (c *Collector) NegotiationFailed() {
	if c == nil {
		return
	}
	c.negotiateErrs.Inc()
	c.mu.Lock()
	c.totals.NegotiationErrors++
	c.mu.Unlock()
}

// Command counts one command outcome.
func (c *Collector) Command(endpoint, result string) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(endpoint, result).Inc()
	c.mu.Lock()
	c.totals.CommandsSent++
	if result != ResultOK {
		c.totals.CommandsFailed++
	}
	c.mu.Unlock()
}

// Totals returns a snapshot of the counters.
func (c *Collector) Totals() Totals {
	if c == nil {
		return Totals{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
