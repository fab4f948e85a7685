package media

import (
	"context"
	"fmt"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rileyhilliard/nevconsole/internal/api"
)

// DefaultGatherTimeout bounds ICE gathering before the offer is sent.
const DefaultGatherTimeout = 3 * time.Second

// PionFactory builds receive-only video sessions with pion/webrtc.
type PionFactory struct {
	ICEServers    []string
	GatherTimeout time.Duration
}

// NewSession creates a peer connection with one recvonly video transceiver.
func (f PionFactory) NewSession(h Handlers) (PeerSession, error) {
	cfg := webrtc.Configuration{}
	if len(f.ICEServers) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: f.ICEServers}}
	}

	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		pc.Close()
		return nil, fmt.Errorf("add video transceiver: %w", err)
	}

	pc.OnTrack(func(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if h.OnTrack != nil {
			h.OnTrack(remoteTrack{tr: tr})
		}
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if p, ok := phaseFor(s); ok && h.OnPhase != nil {
			h.OnPhase(p)
		}
	})

	timeout := f.GatherTimeout
	if timeout <= 0 {
		timeout = DefaultGatherTimeout
	}
	return &pionSession{pc: pc, gatherTimeout: timeout}, nil
}

// phaseFor maps the states that change what the operator sees. Connected is
// not one of them: the session is LIVE once a track arrives.
func phaseFor(s webrtc.PeerConnectionState) (Phase, bool) {
	switch s {
	case webrtc.PeerConnectionStateNew, webrtc.PeerConnectionStateConnecting:
		return PhaseConnecting, true
	case webrtc.PeerConnectionStateDisconnected:
		return PhaseDisconnected, true
	case webrtc.PeerConnectionStateFailed:
		return PhaseFailed, true
	case webrtc.PeerConnectionStateClosed:
		return PhaseClosed, true
	default:
		return "", false
	}
}

type pionSession struct {
	pc            *webrtc.PeerConnection
	gatherTimeout time.Duration
}

// CreateOffer sets the local description and waits for gathering to finish,
// or for the gather timeout, whichever comes first. Candidates are sent in
// the offer; there is no trickle.
func (s *pionSession) CreateOffer(ctx context.Context) (api.SessionDescription, error) {
	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return api.SessionDescription{}, err
	}
	gathered := webrtc.GatheringCompletePromise(s.pc)
	if err := s.pc.SetLocalDescription(offer); err != nil {
		return api.SessionDescription{}, err
	}

	timer := time.NewTimer(s.gatherTimeout)
	defer timer.Stop()
	select {
	case <-gathered:
	case <-timer.C:
	case <-ctx.Done():
		return api.SessionDescription{}, ctx.Err()
	}

	local := s.pc.LocalDescription()
	if local == nil {
		return api.SessionDescription{}, fmt.Errorf("no local description after gathering")
	}
	return api.SessionDescription{SDP: local.SDP, Type: local.Type.String()}, nil
}

func (s *pionSession) SetRemoteDescription(d api.SessionDescription) error {
	typ := webrtc.NewSDPType(d.Type)
	if typ == webrtc.SDPTypeUnknown {
		return fmt.Errorf("unknown SDP type %q", d.Type)
	}
	return s.pc.SetRemoteDescription(webrtc.SessionDescription{Type: typ, SDP: d.SDP})
}

func (s *pionSession) Close() error {
	return s.pc.Close()
}

type remoteTrack struct {
	tr *webrtc.TrackRemote
}

func (t remoteTrack) ID() string    { return t.tr.ID() }
func (t remoteTrack) Kind() string  { return t.tr.Kind().String() }
func (t remoteTrack) Codec() string { return t.tr.Codec().MimeType }

func (t remoteTrack) Read(b []byte) (int, error) {
	n, _, err := t.tr.Read(b)
	return n, err
}
