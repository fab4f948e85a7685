// Package render projects a state snapshot into a fixed set of display blocks.
//
// Projection is pure: the same snapshot always yields the same view. The view's
// timestamp is the snapshot's ReceivedAt, stamped when the frame is parsed. Every
// block reads its own subtree and degrades to a "no data" marker on its own,
// so a missing or malformed subtree never blanks its neighbours.
package render

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

// NoDataMarker is shown in place of a block's rows when its subtree is unusable.
const NoDataMarker = "no data"

// Missing is shown for a leaf the backend did not send.
const Missing = "n/a"

// Kind tells the console how to draw a row.
type Kind int

const (
	// KindValue is a plain formatted value.
	KindValue Kind = iota
	// KindMetric is a 0-100 gauge; Gauge holds the percentage.
	KindMetric
	// KindStatus is a boolean indicator; Active holds the boolean.
	KindStatus
)

// Row is one labelled value inside a block.
type Row struct {
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"-"`
	Gauge    float64  `json:"gauge,omitempty"`
	Active   bool     `json:"-"`
}

// Block is one independently rendered console section.
type Block struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Rows   []Row  `json:"rows,omitempty"`
	NoData bool   `json:"no_data,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Severity returns the worst severity among the block's rows.
func (b Block) Severity() Severity {
	worst := Normal
	for _, r := range b.Rows {
		worst = worst.Worse(r.Severity)
	}
	return worst
}

// ModeIndicator is the requested mux mode as last reported by the backend.
type ModeIndicator struct {
	Present bool   `json:"present"`
	Code    int    `json:"code"`
	Label   string `json:"label"`
	Known   bool   `json:"known"`
}

// View is the full projection of one snapshot. EStopActive is the
// authoritative operator e-stop state, nil when the backend has not said.
type View struct {
	Blocks      []Block       `json:"blocks"`
	Mode        ModeIndicator `json:"mode"`
	EStopActive *bool         `json:"estop_active"`
	ReceivedAt  time.Time     `json:"received_at"`
}

// Block returns the named block, or false if the view has none by that name.
func (v View) Block(name string) (Block, bool) {
	for _, b := range v.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// Project builds the display model for s. A nil snapshot yields every block
// in its no-data state.
func Project(s *snapshot.Snapshot) View {
	if s == nil {
		s = &snapshot.Snapshot{}
	}

	// ReceivedAt comes from the snapshot; never stamp the clock here.
	v := View{
		Blocks:     make([]Block, 0, len(blockSet)),
		ReceivedAt: s.ReceivedAt,
	}
	for _, def := range blockSet {
		v.Blocks = append(v.Blocks, buildBlock(def, s))
	}

	if s.Mux != nil && s.Mux.RequestedMode != nil {
		code := *s.Mux.RequestedMode
		_, known := ModeNames[code]
		v.Mode = ModeIndicator{Present: true, Code: code, Label: Code(ModeNames, code), Known: known}
	}
	if s.Control != nil && s.Control.EStop != nil {
		active := *s.Control.EStop
		v.EStopActive = &active
	}
	return v
}

// errNoData signals a block whose subtree is absent.
type errNoData struct{ reason string }

func (e errNoData) Error() string { return e.reason }

func buildBlock(def blockSpec, s *snapshot.Snapshot) (b Block) {
	b = Block{Name: def.name, Title: def.title}

	defer func() {
		if r := recover(); r != nil {
			b.Rows = nil
			b.NoData = true
			b.Reason = fmt.Sprintf("render failed: %v", r)
		}
	}()

	for _, key := range def.keys {
		if err := s.Fault(key); err != nil {
			b.NoData = true
			b.Reason = err.Error()
			return b
		}
	}

	rows, err := def.build(s)
	if err != nil {
		b.NoData = true
		b.Reason = err.Error()
		return b
	}
	b.Rows = rows
	return b
}
