package console

import (
	"strings"

	"github.com/rileyhilliard/nevconsole/internal/render"
)

// Report renders a single view without the interactive chrome, for one-shot
// output. width is the terminal width, or 0 for the default three columns.
func Report(v render.View, width int) string {
	m := Model{view: v, hasView: true, width: width}
	sections := []string{
		m.renderModeBar() + "  " + m.renderEStopBanner(),
		m.renderBlocks(),
	}
	return strings.Join(sections, "\n\n")
}
