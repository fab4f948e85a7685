// Package snapshot defines the state frame pushed by the console backend and
// decodes it defensively: any subtree may be missing or malformed, and only
// that subtree is lost.
package snapshot

import (
	"bytes"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rileyhilliard/nevconsole/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse decodes a state frame. It fails only when the frame is not a JSON
// object; per-key decode failures are recorded as faults on the snapshot.
func Parse(data []byte) (*Snapshot, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			"State frame is not a JSON object",
			"The backend may be running an incompatible version")
	}
	if raw == nil {
		return nil, errors.New(errors.ErrParse, "State frame is null", "")
	}

	s := &Snapshot{
		ReceivedAt: time.Now(),
		faults:     make(map[string]error),
	}

	decodeField(s, raw, KeyMux, &s.Mux)
	decodeField(s, raw, KeyTwist, &s.Twist)
	decodeField(s, raw, KeyNetwork, &s.Network)
	decodeField(s, raw, KeyHunter, &s.Hunter)
	decodeField(s, raw, KeyEStop, &s.EStop)
	decodeField(s, raw, KeyResources, &s.Resources)
	decodeField(s, raw, KeyControl, &s.Control)
	decodeField(s, raw, KeyRemoteEnabled, &s.RemoteEnabled)
	decodeField(s, raw, KeyStationConnected, &s.StationConnected)
	decodeField(s, raw, KeyVehicleAge, &s.VehicleAge)
	decodeField(s, raw, KeyServerTime, &s.ServerTime)

	decodeList(s, raw, KeyGPUs, &s.GPUs)
	decodeList(s, raw, KeyDisks, &s.Disks)
	decodeList(s, raw, KeyInterfaces, &s.Interfaces)
	decodeList(s, raw, KeyAlerts, &s.Alerts)

	return s, nil
}

// decodeField decodes raw[key] into dst. Missing and null keys leave dst at
// its zero value; anything else that fails is recorded as a fault.
func decodeField[T any](s *Snapshot, raw map[string]jsoniter.RawMessage, key string, dst *T) {
	msg, ok := raw[key]
	if !ok || isNull(msg) {
		return
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		s.faults[key] = fmt.Errorf("decode %s: %w", key, err)
		return
	}
	*dst = v
}

// decodeList decodes a list entry by entry. Entries that fail to decode are
// kept as nil so the renderer drops them without losing their neighbours.
func decodeList[T any](s *Snapshot, raw map[string]jsoniter.RawMessage, key string, dst *[]*T) {
	msg, ok := raw[key]
	if !ok || isNull(msg) {
		return
	}
	var entries []jsoniter.RawMessage
	if err := json.Unmarshal(msg, &entries); err != nil {
		s.faults[key] = fmt.Errorf("decode %s: %w", key, err)
		return
	}
	out := make([]*T, len(entries))
	for i, entry := range entries {
		if isNull(entry) {
			continue
		}
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			continue
		}
		out[i] = &v
	}
	*dst = out
}

func isNull(msg jsoniter.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}
