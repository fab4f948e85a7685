package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors are cycled through by the spinner.
var GradientColors = []lipgloss.Color{"205", "141", "81", "84"}
