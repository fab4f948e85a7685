package media

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/api"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/metrics"
	"github.com/rileyhilliard/nevconsole/internal/retry"
)

// DefaultRetryDelay is the fixed pause before a full session rebuild.
const DefaultRetryDelay = 3 * time.Second

// Options configures a Negotiator.
type Options struct {
	RetryDelay time.Duration
	Factory    PeerFactory
	Signaler   Signaler
	Sink       Sink
	Clock      retry.Clock
	Logger     logger.Logger
	Metrics    *metrics.Collector
}

type trackArrived struct {
	gen   uint64
	track Track
}

type phaseReported struct {
	gen   uint64
	phase Phase
}

type negotiated struct {
	gen    uint64
	answer api.SessionDescription
	err    error
}

type retryFired struct {
	token uint64
}

// Negotiator owns the media session. Session, sink binding and retry timer
// are touched only by the goroutine running Run.
type Negotiator struct {
	opts Options
	log  logger.Logger

	starts chan struct{}
	loop   chan any
	events chan Event
	done   chan struct{}

	// loop-owned
	runCtx    context.Context
	session   PeerSession
	cancelNeg context.CancelFunc
	gen       uint64
	bound     bool
	started   int
	slot      *retry.Slot

	mu    sync.RWMutex
	phase Phase
}

// NewNegotiator creates a negotiator. Nothing happens until Start is called
// and Run is running.
func NewNegotiator(opts Options) *Negotiator {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	return &Negotiator{
		opts:   opts,
		log:    opts.Logger,
		starts: make(chan struct{}, 4),
		loop:   make(chan any, 16),
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		slot:   retry.NewSlot(opts.Clock),
		phase:  PhaseOff,
	}
}

// Events is the outbound phase stream. It is closed when Run returns.
func (n *Negotiator) Events() <-chan Event {
	return n.events
}

// Phase returns the current phase.
func (n *Negotiator) Phase() Phase {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.phase
}

// Start disposes any existing session, cancels a pending retry and builds a
// fresh session.
func (n *Negotiator) Start() {
	select {
	case n.starts <- struct{}{}:
	case <-n.done:
	}
}

// Run processes session events until ctx is cancelled, then disposes the
// session without scheduling a rebuild.
func (n *Negotiator) Run(ctx context.Context) error {
	n.runCtx = ctx
	defer n.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.starts:
			n.start()
		case ev := <-n.loop:
			n.handle(ev)
		}
	}
}

func (n *Negotiator) handle(ev any) {
	switch ev := ev.(type) {
	case trackArrived:
		if ev.gen == n.gen && n.session != nil {
			n.onTrack(ev.track)
		}
	case phaseReported:
		if ev.gen == n.gen && n.session != nil {
			n.onPhase(ev.phase)
		}
	case negotiated:
		if ev.gen == n.gen && n.session != nil {
			n.onNegotiated(ev)
		}
	case retryFired:
		if n.slot.Claim(ev.token) {
			n.log.Debug("rebuilding media session")
			n.start()
		}
	}
}

func (n *Negotiator) start() {
	n.dispose()
	n.slot.Cancel()

	if n.started > 0 {
		n.opts.Metrics.MediaRestart()
	}
	n.started++

	gen := n.gen
	sess, err := n.opts.Factory.NewSession(Handlers{
		OnTrack: func(t Track) { n.post(trackArrived{gen: gen, track: t}) },
		OnPhase: func(p Phase) { n.post(phaseReported{gen: gen, phase: p}) },
	})
	if err != nil {
		n.fail(errors.WrapWithCode(err, errors.ErrNegotiation,
			"Couldn't create media session", ""))
		return
	}
	n.session = sess
	n.setPhase(PhaseConnecting)
	n.emit(Event{Phase: PhaseConnecting})

	ctx, cancel := context.WithCancel(n.runCtx)
	n.cancelNeg = cancel
	go func() {
		answer, err := n.exchange(ctx, sess)
		n.post(negotiated{gen: gen, answer: answer, err: err})
	}()
}

// exchange creates the local offer and trades it for the remote answer. It
// runs off the loop; the answer is applied by the loop.
func (n *Negotiator) exchange(ctx context.Context, sess PeerSession) (api.SessionDescription, error) {
	offer, err := sess.CreateOffer(ctx)
	if err != nil {
		return api.SessionDescription{}, errors.WrapWithCode(err, errors.ErrNegotiation,
			"Couldn't create media offer", "")
	}
	return n.opts.Signaler.Offer(ctx, offer)
}

func (n *Negotiator) onNegotiated(ev negotiated) {
	n.cancelNeg = nil
	if ev.err != nil {
		n.fail(ev.err)
		return
	}
	if err := n.session.SetRemoteDescription(ev.answer); err != nil {
		n.fail(errors.WrapWithCode(err, errors.ErrNegotiation,
			"Media answer was not usable", ""))
		return
	}
	n.log.Debug("media answer applied, waiting for track")
}

func (n *Negotiator) onTrack(t Track) {
	n.opts.Sink.Bind(t)
	n.bound = true
	n.setPhase(PhaseLive)
	n.opts.Metrics.MediaLive(true)
	n.log.Info("media live: %s track %s (%s)", t.Kind(), t.ID(), t.Codec())
	n.emit(Event{Phase: PhaseLive, TrackID: t.ID(), Codec: t.Codec()})
}

func (n *Negotiator) onPhase(p Phase) {
	if !p.Terminal() {
		return
	}
	n.log.Warn("media session %s", p)
	n.opts.Metrics.NegotiationFailed()
	n.dispose()
	n.setPhase(p)
	n.scheduleRebuild()
	n.emit(Event{Phase: p})
}

// fail handles any negotiation error: the session is discarded and a
// rebuild is scheduled.
func (n *Negotiator) fail(err error) {
	n.log.Warn("media negotiation failed: %s", errors.Summary(err))
	n.opts.Metrics.NegotiationFailed()
	n.dispose()
	n.setPhase(PhaseFailed)
	n.scheduleRebuild()
	n.emit(Event{Phase: PhaseFailed, Err: err})
}

func (n *Negotiator) scheduleRebuild() {
	n.slot.Schedule(n.opts.RetryDelay, func(token uint64) {
		n.post(retryFired{token: token})
	})
}

// dispose closes the current session exactly once and unbinds the sink.
// Callbacks from the closed session are ignored from here on.
func (n *Negotiator) dispose() {
	n.gen++
	if n.cancelNeg != nil {
		n.cancelNeg()
		n.cancelNeg = nil
	}
	if n.bound {
		n.opts.Sink.Unbind()
		n.bound = false
		n.opts.Metrics.MediaLive(false)
	}
	if n.session != nil {
		if err := n.session.Close(); err != nil {
			n.log.Debug("closing media session: %v", err)
		}
		n.session = nil
	}
}

func (n *Negotiator) setPhase(p Phase) {
	n.mu.Lock()
	n.phase = p
	n.mu.Unlock()
}

func (n *Negotiator) post(ev any) {
	select {
	case n.loop <- ev:
	case <-n.done:
	}
}

func (n *Negotiator) emit(ev Event) {
	select {
	case n.events <- ev:
	case <-n.runCtx.Done():
	}
}

func (n *Negotiator) shutdown() {
	close(n.done)
	n.slot.Cancel()
	n.dispose()
	n.setPhase(PhaseOff)
	close(n.events)
}
