package feed

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/metrics"
	fakeclock "github.com/rileyhilliard/nevconsole/internal/retry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPeerGone = stderrors.New("peer went away")

type fakeConn struct {
	frames    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	readErr   error
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 8), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.frames:
		return websocket.TextMessage, data, nil
	case <-c.closed:
		if c.readErr != nil {
			return 0, nil, c.readErr
		}
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// drop simulates the peer ending the connection.
func (c *fakeConn) drop(err error) {
	c.readErr = err
	c.Close()
}

type fakeDialer struct {
	mu    sync.Mutex
	fail  error
	conns []*fakeConn
	urls  []string
}

func (d *fakeDialer) Dial(_ context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	if d.fail != nil {
		return nil, d.fail
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) setFail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = err
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

type harness struct {
	m       *Manager
	dialer  *fakeDialer
	clock   *fakeclock.FakeClock
	log     *logger.BufferLogger
	metrics *metrics.Collector
	cancel  context.CancelFunc
	done    chan struct{}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dialer:  &fakeDialer{},
		clock:   fakeclock.NewFakeClock(),
		log:     logger.NewBufferLogger(),
		metrics: metrics.NewCollector(),
		done:    make(chan struct{}),
	}
	h.m = NewManager(Options{
		URL:     "ws://vehicle:8080/ws",
		Dialer:  h.dialer,
		Clock:   h.clock,
		Logger:  h.log,
		Metrics: h.metrics,
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		defer close(h.done)
		_ = h.m.Run(ctx)
	}()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

func (h *harness) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev, ok := <-h.m.Events():
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for feed event")
		return Event{}
	}
}

func (h *harness) expectHealth(t *testing.T, want Health) Event {
	t.Helper()
	ev := h.next(t)
	require.Equal(t, EventHealth, ev.Kind)
	require.Equal(t, want, ev.Health)
	return ev
}

const remoteFrame = `{"mux": {"requested_mode": 2, "active_source": 1}, "control": {"estop": false}}`

func TestManager_ConnectAndReceive(t *testing.T) {
	h := newHarness(t)
	h.m.Connect()
	h.expectHealth(t, Healthy)
	assert.Equal(t, Healthy, h.m.Health())
	assert.Equal(t, 1, h.dialer.dials())
	assert.Equal(t, "ws://vehicle:8080/ws", h.dialer.urls[0])

	h.dialer.conn(0).frames <- []byte(remoteFrame)
	ev := h.next(t)
	require.Equal(t, EventSnapshot, ev.Kind)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, "REMOTE", ev.View.Mode.Label)
	require.NotNil(t, ev.View.EStopActive)
	assert.False(t, *ev.View.EStopActive)
	assert.Same(t, ev.Snapshot, h.m.Latest())
	assert.Equal(t, int64(1), h.metrics.Totals().Snapshots)
}

func TestManager_ConnectIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.m.Connect()
	h.m.Connect()
	h.expectHealth(t, Healthy)
	h.m.Connect()

	// A frame round trip proves the loop has handled every Connect above.
	h.dialer.conn(0).frames <- []byte(`{}`)
	h.next(t)
	assert.Equal(t, 1, h.dialer.dials())
	assert.Equal(t, 0, h.clock.Pending())
}

func TestManager_ParseFailureKeepsTransport(t *testing.T) {
	h := newHarness(t)
	h.m.Connect()
	h.expectHealth(t, Healthy)

	conn := h.dialer.conn(0)
	conn.frames <- []byte(`{"mux": {"requested_mode": 1}}`)
	first := h.next(t)
	conn.frames <- []byte(`not json`)
	conn.frames <- []byte(`[1, 2]`)
	conn.frames <- []byte(`{"mux": {"requested_mode": 0}}`)

	ev := h.next(t)
	require.Equal(t, EventSnapshot, ev.Kind)
	assert.Equal(t, "CTRL", ev.View.Mode.Label)
	assert.NotSame(t, first.Snapshot, h.m.Latest())

	assert.False(t, conn.isClosed())
	assert.Equal(t, Healthy, h.m.Health())
	assert.Equal(t, int64(2), h.metrics.Totals().ParseErrors)
	assert.True(t, h.log.HasLevel("warn"))
	assert.Equal(t, 1, h.dialer.dials())
}

func TestManager_PeerCloseSchedulesOneReconnect(t *testing.T) {
	h := newHarness(t)
	h.m.Connect()
	h.expectHealth(t, Healthy)

	h.dialer.conn(0).drop(errPeerGone)
	ev := h.expectHealth(t, Unhealthy)
	assert.ErrorIs(t, ev.Err, errPeerGone)
	assert.Equal(t, []time.Duration{DefaultReconnectDelay}, h.clock.Delays())

	h.clock.Advance(DefaultReconnectDelay - time.Millisecond)
	assert.Equal(t, 1, h.dialer.dials())

	h.clock.Advance(time.Millisecond)
	h.expectHealth(t, Healthy)
	assert.Equal(t, 2, h.dialer.dials())
	assert.Equal(t, 0, h.clock.Pending())
	assert.Equal(t, int64(1), h.metrics.Totals().Reconnects)
}

func TestManager_RepeatedFailuresKeepOneTimer(t *testing.T) {
	h := newHarness(t)
	h.dialer.setFail(stderrors.New("connection refused"))

	h.m.Connect()
	h.expectHealth(t, Unhealthy)
	assert.Equal(t, 1, h.clock.Pending())

	for i := 0; i < 5; i++ {
		h.clock.Advance(DefaultReconnectDelay)
		h.expectHealth(t, Unhealthy)
		assert.Equal(t, 1, h.clock.Pending(), "after close %d", i+2)
	}

	// Manual connects between closes still leave a single timer.
	for i := 0; i < 3; i++ {
		h.m.Connect()
		h.expectHealth(t, Unhealthy)
		assert.Equal(t, 1, h.clock.Pending())
	}
	assert.Equal(t, 9, h.dialer.dials())
}

func TestManager_ExplicitCloseReconnects(t *testing.T) {
	h := newHarness(t)
	h.m.Connect()
	h.expectHealth(t, Healthy)

	h.m.Close()
	ev := h.expectHealth(t, Unhealthy)
	assert.NoError(t, ev.Err)
	assert.True(t, h.dialer.conn(0).isClosed())
	assert.Equal(t, 1, h.clock.Pending())

	// Connect while a reconnect is pending cancels it and dials now.
	h.m.Connect()
	h.expectHealth(t, Healthy)
	assert.Equal(t, 0, h.clock.Pending())
	assert.Equal(t, 2, h.dialer.dials())
}

func TestManager_ShutdownClosesEverything(t *testing.T) {
	h := newHarness(t)
	h.m.Connect()
	h.expectHealth(t, Healthy)
	h.dialer.conn(0).drop(errPeerGone)
	h.expectHealth(t, Unhealthy)
	h.m.Connect()
	h.expectHealth(t, Healthy)

	h.stop()

	assert.True(t, h.dialer.conn(1).isClosed())
	assert.Equal(t, 0, h.clock.Pending())
	_, ok := <-h.m.Events()
	assert.False(t, ok, "event stream closes on shutdown")

	// Triggers after shutdown must not block.
	h.m.Connect()
	h.m.Close()
}

func TestURL(t *testing.T) {
	tests := []struct {
		server  string
		path    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "/ws", "ws://localhost:8080/ws", false},
		{"https://vehicle.example.com/", "/ws", "wss://vehicle.example.com/ws", false},
		{"http://gw:80/console", "ws", "ws://gw:80/console/ws", false},
		{"ws://10.0.0.2:8080", "", "ws://10.0.0.2:8080/ws", false},
		{"ftp://host", "/ws", "", true},
		{"localhost:8080", "/ws", "", true},
		{"http://", "/ws", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			got, err := URL(tt.server, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
