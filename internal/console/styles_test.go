package console

import (
	"strings"
	"testing"

	"github.com/rileyhilliard/nevconsole/internal/render"
	"github.com/stretchr/testify/assert"
)

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, ColorHealthy, SeverityColor(render.Normal))
	assert.Equal(t, ColorWarning, SeverityColor(render.Warning))
	assert.Equal(t, ColorCritical, SeverityColor(render.Critical))
}

func TestSeverityGlyph(t *testing.T) {
	assert.Equal(t, GlyphNormal, SeverityGlyph(render.Normal))
	assert.Equal(t, GlyphWarning, SeverityGlyph(render.Warning))
	assert.Equal(t, GlyphCritical, SeverityGlyph(render.Critical))
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		percent float64
		filled  int
	}{
		{-5, 0},
		{0, 0},
		{50, 5},
		{99, 9},
		{100, 10},
		{250, 10},
	}

	for _, tt := range tests {
		bar := GaugeBar(10, tt.percent, render.Normal)
		assert.Equal(t, tt.filled, strings.Count(bar, "▰"), "percent %v", tt.percent)
		assert.Equal(t, 10-tt.filled, strings.Count(bar, "▱"), "percent %v", tt.percent)
	}

	assert.Equal(t, 1, strings.Count(GaugeBar(0, 100, render.Normal), "▰"))
}

func TestRenderCard(t *testing.T) {
	missing := render.Block{Name: "drive", Title: "Drive", NoData: true, Reason: "not reported"}
	out := renderCard(missing, defaultCardWidth)
	assert.Contains(t, out, "Drive")
	assert.Contains(t, out, "no data (not reported)")

	ok := render.Block{Name: "network", Title: "Network", Rows: []render.Row{
		{Label: "rtt", Value: "42.0", Severity: render.Normal},
		{Label: "usage", Value: "91.0%", Severity: render.Critical, Kind: render.KindMetric, Gauge: 91},
	}}
	out = renderCard(ok, defaultCardWidth)
	assert.Contains(t, out, GlyphCritical)
	assert.Contains(t, out, "42.0")
	assert.Contains(t, out, "▰")
}
