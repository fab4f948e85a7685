package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/feed"
	"github.com/rileyhilliard/nevconsole/internal/media"
	"github.com/rileyhilliard/nevconsole/internal/render"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

const (
	defaultCardWidth = 36
	labelWidth       = 11
	gaugeWidth       = 8
	sparklineWidth   = 24
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	sections := []string{
		m.renderHeader(),
		m.renderModeBar() + "  " + m.renderEStopBanner(),
		m.renderBlocks(),
		m.renderTrends(),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("nevconsole")

	healthStyle := SeverityStyle(render.Normal)
	if m.health != feed.Healthy {
		healthStyle = SeverityStyle(render.Critical)
	}

	updated := "waiting for first snapshot"
	if m.hasView && !m.view.ReceivedAt.IsZero() {
		updated = "updated " + humanize.Time(m.view.ReceivedAt)
	}

	parts := []string{
		title,
		LabelStyle.Render(m.server),
		LabelStyle.Render("feed ") + healthStyle.Render(m.health.String()),
		LabelStyle.Render("video ") + m.renderPhase(),
		MutedStyle.Render(updated),
	}
	return HeaderStyle.Render(strings.Join(parts, LabelStyle.Render(" | ")))
}

func (m Model) renderPhase() string {
	if m.media == nil {
		return MutedStyle.Render("disabled")
	}
	switch m.phase {
	case media.PhaseLive:
		return SeverityStyle(render.Normal).Render(string(m.phase))
	case media.PhaseConnecting, media.PhaseOff:
		return SeverityStyle(render.Warning).Render(string(m.phase))
	default:
		return SeverityStyle(render.Critical).Render(string(m.phase))
	}
}

// renderModeBar highlights the mode the backend reports as requested.
func (m Model) renderModeBar() string {
	mode := m.view.Mode
	parts := []string{LabelStyle.Render("mode")}
	for _, candidate := range snapshot.Modes {
		style := ModeIdleStyle
		if mode.Present && mode.Code == int(candidate) {
			style = ModeActiveStyle
		}
		parts = append(parts, style.Render(candidate.String()))
	}

	switch {
	case !mode.Present:
		parts = append(parts, MutedStyle.Render(render.NoDataMarker))
	case !mode.Known:
		parts = append(parts, SeverityStyle(render.Critical).Render("unknown mode "+mode.Label))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderEStopBanner() string {
	active := m.view.EStopActive
	switch {
	case active == nil:
		return MutedStyle.Render("e-stop " + render.NoDataMarker)
	case *active && m.pendingRelease:
		return EStopOnStyle.Render("E-STOP ACTIVE - press space again to release")
	case *active:
		return EStopOnStyle.Render("E-STOP ACTIVE")
	default:
		return EStopClearStyle.Render("e-stop clear")
	}
}

// renderBlocks lays the display blocks out in a grid of cards.
func (m Model) renderBlocks() string {
	cardWidth := m.cardWidth()
	cards := make([]string, 0, len(m.view.Blocks))
	for _, b := range m.view.Blocks {
		cards = append(cards, renderCard(b, cardWidth))
	}
	return m.layoutCards(cards, cardWidth)
}

func (m Model) cardWidth() int {
	if m.width == 0 || m.width >= defaultCardWidth+4 {
		return defaultCardWidth
	}
	return m.width - 4
}

func (m Model) layoutCards(cards []string, cardWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	perRow := 3
	if m.width > 0 {
		// margin + border
		perRow = m.width / (cardWidth + 3)
		if perRow < 1 {
			perRow = 1
		}
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(b render.Block, width int) string {
	lines := []string{SectionHeader(b)}
	if b.NoData {
		marker := render.NoDataMarker
		if b.Reason != "" {
			marker += " (" + b.Reason + ")"
		}
		lines = append(lines, MutedStyle.Render(marker))
	}
	for _, r := range b.Rows {
		lines = append(lines, renderRow(r))
	}
	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func renderRow(r render.Row) string {
	label := LabelStyle.Width(labelWidth).Render(r.Label)
	value := SeverityStyle(r.Severity).Render(r.Value)
	switch r.Kind {
	case render.KindMetric:
		return label + GaugeBar(gaugeWidth, r.Gauge, r.Severity) + " " + value
	case render.KindStatus:
		return label + SeverityStyle(r.Severity).Render(SeverityGlyph(r.Severity)) + " " + value
	default:
		return label + value
	}
}

// renderTrends shows short UI-side histories. They are not part of any
// snapshot and reset when the console restarts.
func (m Model) renderTrends() string {
	var parts []string
	if rtt := m.history.Last(SeriesRTT, sparklineWidth); len(rtt) > 0 {
		parts = append(parts, LabelStyle.Render("rtt ")+
			RenderSeveritySparkline(rtt, sparklineWidth, render.RTT)+" "+
			render.Fixed(rtt[len(rtt)-1], 1)+"ms")
	}
	if cpu := m.history.Last(SeriesCPU, sparklineWidth); len(cpu) > 0 {
		parts = append(parts, LabelStyle.Render("cpu ")+
			RenderSeveritySparkline(cpu, sparklineWidth, render.CPUUsage)+" "+
			render.Percent(cpu[len(cpu)-1]))
	}
	if m.meter != nil {
		video := LabelStyle.Render("video ")
		if rates := m.history.Last(SeriesBitrate, sparklineWidth); len(rates) > 0 {
			video += RenderAccentSparkline(rates, sparklineWidth, ColorGraph) + " "
		}
		video += render.Rate(m.bitrate)
		if m.codec != "" {
			video += MutedStyle.Render(" " + m.codec)
		}
		parts = append(parts, video)
	}
	if len(parts) == 0 {
		return MutedStyle.Render("no trends yet")
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderFooter() string {
	var lines []string

	if status := m.renderCommandStatus(); status != "" {
		lines = append(lines, status)
	}
	if m.health != feed.Healthy && m.feedErr != nil {
		lines = append(lines, SeverityStyle(render.Warning).Render("feed: "+errors.Summary(m.feedErr)))
	}
	if m.mediaErr != nil {
		lines = append(lines, SeverityStyle(render.Warning).Render("video: "+errors.Summary(m.mediaErr)))
	}
	if totals := m.renderTotals(); totals != "" {
		lines = append(lines, totals)
	}
	lines = append(lines, m.help.ShortHelpView(m.keys.ShortHelp()))

	return FooterStyle.Render(strings.Join(lines, "\n"))
}

// renderCommandStatus shows the pending notice, or else the last command's
// outcome. It reports what the backend said, not vehicle state.
func (m Model) renderCommandStatus() string {
	if m.notice != "" {
		return LabelStyle.Render(m.notice)
	}
	o := m.lastCmd
	if o == nil {
		return ""
	}
	if o.Err != nil {
		return SeverityStyle(render.Critical).Render("✗ " + o.Label + ": " + errors.Summary(o.Err))
	}

	line := SeverityStyle(render.Normal).Render(fmt.Sprintf("✓ %s accepted in %s",
		o.Label, o.Result.Duration.Round(time.Millisecond)))
	if sc := o.Result.StationConnected; sc != nil && !*sc {
		line += " " + SeverityStyle(render.Warning).Render("(station offline)")
	}
	return line
}

func (m Model) renderTotals() string {
	if m.metrics == nil {
		return ""
	}
	t := m.metrics.Totals()
	parts := []string{
		"snapshots " + humanize.Comma(t.Snapshots),
		"parse errors " + humanize.Comma(t.ParseErrors),
		"reconnects " + humanize.Comma(t.Reconnects),
		"video restarts " + humanize.Comma(t.MediaRestarts),
		fmt.Sprintf("commands %s (%s failed)", humanize.Comma(t.CommandsSent), humanize.Comma(t.CommandsFailed)),
	}
	return MutedStyle.Render(strings.Join(parts, " · "))
}
