package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/nevconsole/internal/render"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ModeActiveStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 1)

	ModeIdleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	EStopOnStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorCritical).
			Bold(true).
			Padding(0, 2)

	EStopClearStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Padding(0, 2)
)

// Severity glyphs shown next to block titles.
const (
	GlyphNormal   = "◉"
	GlyphWarning  = "◔"
	GlyphCritical = "◌"
)

// SeverityColor maps a severity bucket to its display color.
func SeverityColor(s render.Severity) lipgloss.Color {
	switch s {
	case render.Critical:
		return ColorCritical
	case render.Warning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// SeverityStyle returns a foreground style for s.
func SeverityStyle(s render.Severity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(SeverityColor(s))
}

// SeverityGlyph returns the status glyph for s.
func SeverityGlyph(s render.Severity) string {
	switch s {
	case render.Critical:
		return GlyphCritical
	case render.Warning:
		return GlyphWarning
	default:
		return GlyphNormal
	}
}

// GaugeBar renders a bracketless bar for a 0-100 value, colored by severity.
func GaugeBar(width int, percent float64, sev render.Severity) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return SeverityStyle(sev).Render(bar)
}

// SectionHeader renders a card title line: glyph, title, then the reason a
// block has no data, if any.
func SectionHeader(b render.Block) string {
	sev := b.Severity()
	title := SeverityStyle(sev).Render(SeverityGlyph(sev)) + " " + CardTitleStyle.Render(b.Title)
	if b.NoData {
		title = MutedStyle.Render("○") + " " + CardTitleStyle.Render(b.Title)
	}
	return title
}
