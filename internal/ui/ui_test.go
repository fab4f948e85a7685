package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatusLines(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, "mode NAV accepted")
	Warning(&buf, "station offline")
	Muted(&buf, "request 1234")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"✓ mode NAV accepted", "  ! station offline", "request 1234"}, lines)
}

func TestSpinner_Success(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "waiting for state")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Success("from ws://x/ws")

	out := buf.String()
	assert.Contains(t, out, "waiting for state...")
	assert.Contains(t, out, "✓ waiting for state from ws://x/ws")
	assert.True(t, strings.HasSuffix(out, "s\n"))
}

func TestSpinner_FinishOnce(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "connecting")
	s.Start()
	s.Start()
	s.Fail("")
	s.Success("ignored")

	out := buf.String()
	assert.Contains(t, out, "✗ connecting")
	assert.NotContains(t, out, "ignored")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestSpinner_FinishWithoutStart(t *testing.T) {
	var buf syncBuffer
	NewSpinner(&buf, "idle").Fail("never started")
	assert.Equal(t, "✗ idle never started\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
}
