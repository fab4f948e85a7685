package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner animation frames
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a "label..." line on w until Success or Fail replaces it
// with a final line. Safe to finish from any goroutine; only the first
// finish call has an effect.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	label    string
	frame    int
	start    time.Time
	lastLen  int
	running  bool
	finished bool
	stop     chan struct{}
	done     chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running || s.finished {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.start = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.renderLocked()
	s.mu.Unlock()

	go s.animate()
}

// Success stops the spinner and prints "✓ label detail".
func (s *Spinner) Success(detail string) {
	s.finish(SymbolSuccess, ColorSuccess, detail)
}

// Fail stops the spinner and prints "✗ label detail".
func (s *Spinner) Fail(detail string) {
	s.finish(SymbolFail, ColorError, detail)
}

func (s *Spinner) finish(symbol string, color lipgloss.Color, detail string) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	running := s.running
	s.running = false
	if running {
		close(s.stop)
	}
	s.mu.Unlock()

	if running {
		<-s.done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()

	parts := []string{lipgloss.NewStyle().Foreground(color).Render(symbol), s.label}
	if detail != "" {
		parts = append(parts, detail)
	}
	if !s.start.IsZero() {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorMuted).Render(formatDuration(time.Since(s.start))))
	}
	fmt.Fprintln(s.w, strings.Join(parts, " "))
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.renderLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) renderLocked() {
	colorIndex := (s.frame / 2) % len(GradientColors)
	style := lipgloss.NewStyle().Foreground(GradientColors[colorIndex])
	line := fmt.Sprintf("%s %s...", style.Render(spinnerFrames[s.frame]), s.label)

	s.clearLocked()
	fmt.Fprint(s.w, "\r"+line)
	s.lastLen = len([]rune(line))
}

func (s *Spinner) clearLocked() {
	if s.lastLen == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastLen)+"\r")
	s.lastLen = 0
}
