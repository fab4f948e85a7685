package snapshot

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is a mux mode code as used by both the state feed and /api/cmd_mode.
type Mode int

const (
	ModeIdle   Mode = -1
	ModeCtrl   Mode = 0
	ModeNav    Mode = 1
	ModeRemote Mode = 2
)

// Modes lists every mode the backend accepts, in display order.
var Modes = []Mode{ModeIdle, ModeCtrl, ModeNav, ModeRemote}

var modeNames = map[Mode]string{
	ModeIdle:   "IDLE",
	ModeCtrl:   "CTRL",
	ModeNav:    "NAV",
	ModeRemote: "REMOTE",
}

// String returns the display name, or the raw code for unknown modes.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return strconv.Itoa(int(m))
}

// Valid reports whether the backend accepts this mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts a mode name (idle, ctrl, nav, remote; any case) or its
// numeric code.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown mode %q (want idle, ctrl, nav, remote or -1..2)", s)
	}
	m := Mode(n)
	if !m.Valid() {
		return 0, fmt.Errorf("mode %d out of range (want -1..2)", n)
	}
	return m, nil
}
