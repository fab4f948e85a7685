// Package media keeps a receive-only live video session with the backend.
//
// A Negotiator owns at most one peer session. Any failure, whether the
// description exchange or a terminal phase reported by the session itself,
// tears the session down and rebuilds it from scratch after a fixed delay.
package media

import (
	"context"

	"github.com/rileyhilliard/nevconsole/internal/api"
)

// Phase is the media status shown to the operator.
type Phase string

const (
	PhaseOff          Phase = "OFF"
	PhaseConnecting   Phase = "CONNECTING"
	PhaseLive         Phase = "LIVE"
	PhaseFailed       Phase = "FAILED"
	PhaseClosed       Phase = "CLOSED"
	PhaseDisconnected Phase = "DISCONNECTED"
)

// Terminal reports whether p ends a session and triggers a rebuild.
func (p Phase) Terminal() bool {
	return p == PhaseFailed || p == PhaseClosed || p == PhaseDisconnected
}

// Track is an inbound media track.
type Track interface {
	ID() string
	Kind() string
	Codec() string
	// Read returns the next chunk of media payload.
	Read(b []byte) (int, error)
}

// Sink is the display side of the media path.
type Sink interface {
	Bind(Track)
	Unbind()
}

// Handlers receive session callbacks. They may run on any goroutine.
type Handlers struct {
	OnTrack func(Track)
	OnPhase func(Phase)
}

// PeerSession is one receive-only peer connection.
type PeerSession interface {
	// CreateOffer builds the local description, waiting for candidate
	// gathering so the offer is complete.
	CreateOffer(ctx context.Context) (api.SessionDescription, error)
	SetRemoteDescription(api.SessionDescription) error
	Close() error
}

// PeerFactory creates peer sessions.
type PeerFactory interface {
	NewSession(h Handlers) (PeerSession, error)
}

// Signaler exchanges descriptions with the backend. *api.Client implements it.
type Signaler interface {
	Offer(ctx context.Context, offer api.SessionDescription) (api.SessionDescription, error)
}

// Event reports a phase change. TrackID and Codec are set on the LIVE
// transition.
type Event struct {
	Phase   Phase
	Err     error
	TrackID string
	Codec   string
}
