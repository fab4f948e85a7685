// Package feed keeps the state feed connected. A Manager owns exactly one
// transport, reconnects after a fixed delay whenever it closes, and publishes
// every parsed snapshot together with its projected view.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/metrics"
	"github.com/rileyhilliard/nevconsole/internal/render"
	"github.com/rileyhilliard/nevconsole/internal/retry"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

// DefaultReconnectDelay is the fixed pause between a close and the next dial.
const DefaultReconnectDelay = 2 * time.Second

// Health is the state feed channel health.
type Health int

const (
	Unhealthy Health = iota
	Healthy
)

func (h Health) String() string {
	if h == Healthy {
		return "HEALTHY"
	}
	return "UNHEALTHY"
}

// EventKind distinguishes the events a Manager publishes.
type EventKind int

const (
	EventHealth EventKind = iota
	EventSnapshot
)

// Event is published on the Manager's event stream. Err carries the close
// cause of an unhealthy transition and is nil for a clean close.
type Event struct {
	Kind   EventKind
	Health Health
	Err    error

	Snapshot *snapshot.Snapshot
	View     render.View
}

// Options configures a Manager.
type Options struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         Dialer
	Clock          retry.Clock
	Logger         logger.Logger
	Metrics        *metrics.Collector
}

type request int

const (
	reqConnect request = iota
	reqClose
)

type dialResult struct {
	gen  uint64
	conn Conn
	err  error
}

type frame struct {
	gen  uint64
	data []byte
}

type closed struct {
	gen uint64
	err error
}

type retryFired struct {
	token uint64
}

// Manager owns the state feed transport. All transport and timer state is
// touched only by the goroutine running Run.
type Manager struct {
	opts Options
	log  logger.Logger

	requests chan request
	loop     chan any
	events   chan Event
	done     chan struct{}

	// loop-owned
	runCtx  context.Context
	conn    Conn
	dialing bool
	gen     uint64
	health  Health
	slot    *retry.Slot

	mu     sync.RWMutex
	latest *snapshot.Snapshot
	status Health
}

// NewManager creates a manager. Nothing is dialed until Connect is called and
// Run is running.
func NewManager(opts Options) *Manager {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	return &Manager{
		opts:     opts,
		log:      opts.Logger,
		requests: make(chan request, 16),
		loop:     make(chan any, 16),
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		slot:     retry.NewSlot(opts.Clock),
	}
}

// Events is the outbound event stream. It is closed when Run returns.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Connect opens the transport unless one is open or being dialed.
func (m *Manager) Connect() {
	m.request(reqConnect)
}

// Close drops the current transport. Like any other close, it is followed by
// a reconnect after the fixed delay.
func (m *Manager) Close() {
	m.request(reqClose)
}

// Latest returns the most recently applied snapshot, or nil.
func (m *Manager) Latest() *snapshot.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// Health returns the current channel health.
func (m *Manager) Health() Health {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) request(r request) {
	select {
	case m.requests <- r:
	case <-m.done:
	}
}

// Run processes transport events until ctx is cancelled. Shutdown closes the
// transport and cancels any pending reconnect without scheduling another.
func (m *Manager) Run(ctx context.Context) error {
	m.runCtx = ctx
	defer m.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-m.requests:
			switch r {
			case reqConnect:
				m.connect()
			case reqClose:
				m.closeTransport(nil)
			}
		case ev := <-m.loop:
			m.handle(ev)
		}
	}
}

func (m *Manager) handle(ev any) {
	switch ev := ev.(type) {
	case dialResult:
		m.onDial(ev)
	case frame:
		if ev.gen == m.gen {
			m.onFrame(ev.data)
		}
	case closed:
		if ev.gen == m.gen && m.conn != nil {
			m.closeTransport(ev.err)
		}
	case retryFired:
		if m.slot.Claim(ev.token) {
			m.opts.Metrics.Reconnect()
			m.log.Debug("reconnecting state feed")
			m.connect()
		}
	}
}

func (m *Manager) connect() {
	if m.conn != nil || m.dialing {
		return
	}
	m.slot.Cancel()
	m.gen++
	m.dialing = true

	gen := m.gen
	ctx := m.runCtx
	go func() {
		conn, err := m.opts.Dialer.Dial(ctx, m.opts.URL)
		if !m.post(dialResult{gen: gen, conn: conn, err: err}) && conn != nil {
			conn.Close()
		}
	}()
}

func (m *Manager) onDial(ev dialResult) {
	if ev.gen != m.gen {
		if ev.conn != nil {
			ev.conn.Close()
		}
		return
	}
	m.dialing = false

	if ev.err != nil {
		m.log.Warn("state feed dial failed: %s", errors.Summary(ev.err))
		m.afterClose(ev.err)
		return
	}

	m.conn = ev.conn
	m.slot.Cancel()
	m.setHealth(Healthy)
	m.opts.Metrics.FeedConnected(true)
	m.log.Info("state feed connected to %s", m.opts.URL)

	go m.readLoop(ev.gen, ev.conn)
	m.emit(Event{Kind: EventHealth, Health: Healthy})
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.post(closed{gen: gen, err: err})
			return
		}
		if !m.post(frame{gen: gen, data: data}) {
			return
		}
	}
}

func (m *Manager) onFrame(data []byte) {
	snap, err := snapshot.Parse(data)
	if err != nil {
		m.opts.Metrics.ParseError()
		m.log.Warn("dropping state frame: %s", errors.Summary(err))
		return
	}

	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()

	view := render.Project(snap)
	m.opts.Metrics.SnapshotApplied()
	m.emit(Event{Kind: EventSnapshot, Health: m.health, Snapshot: snap, View: view})
}

// closeTransport force-closes the transport (or abandons an in-flight dial)
// and follows the close path. With nothing open it does nothing.
func (m *Manager) closeTransport(cause error) {
	switch {
	case m.conn != nil:
		m.conn.Close()
		m.conn = nil
	case m.dialing:
		m.dialing = false
	default:
		return
	}
	m.gen++

	if cause != nil {
		m.log.Warn("state feed closed: %s", errors.Summary(cause))
	} else {
		m.log.Info("state feed closed")
	}
	m.afterClose(cause)
}

func (m *Manager) afterClose(cause error) {
	m.setHealth(Unhealthy)
	m.opts.Metrics.FeedConnected(false)
	m.slot.Schedule(m.opts.ReconnectDelay, func(token uint64) {
		m.post(retryFired{token: token})
	})
	m.emit(Event{Kind: EventHealth, Health: Unhealthy, Err: cause})
}

func (m *Manager) setHealth(h Health) {
	m.health = h
	m.mu.Lock()
	m.status = h
	m.mu.Unlock()
}

// post hands an event from a helper goroutine to the loop. It reports false
// once the loop has exited.
func (m *Manager) post(ev any) bool {
	select {
	case m.loop <- ev:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	case <-m.runCtx.Done():
	}
}

func (m *Manager) shutdown() {
	close(m.done)
	m.slot.Cancel()
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.gen++
	m.dialing = false
	m.setHealth(Unhealthy)
	m.opts.Metrics.FeedConnected(false)
	close(m.events)
	m.log.Debug("state feed manager stopped")
}
