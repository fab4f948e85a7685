package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Success writes "✓ msg" in green.
func Success(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess), msg)
}

// Warning writes an indented "! msg" follow-up line.
func Warning(w io.Writer, msg string) {
	fmt.Fprintf(w, "  %s %s\n", lipgloss.NewStyle().Foreground(ColorWarning).Render(SymbolWarning), msg)
}

// Muted writes a gray line.
func Muted(w io.Writer, msg string) {
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(ColorMuted).Render(msg))
}

// formatDuration formats a duration for display (e.g., "0.03s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
