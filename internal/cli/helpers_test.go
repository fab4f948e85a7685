package cli

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// isolate runs a test with no config files in reach and the global flags reset.
func isolate(t *testing.T, server string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, k := range []string{"NEVC_SERVER", "NEVC_LOG_LEVEL", "NEVC_DEBUG"} {
		t.Setenv(k, "")
	}

	oldCfg, oldServer, oldVerbose := cfgFile, serverURL, verbose
	oldPrompt, oldInteractive := prompt, interactive
	oldEStopYes, oldEStopJSON, oldModeJSON := estopYes, estopJSON, modeJSON
	t.Cleanup(func() {
		cfgFile, serverURL, verbose = oldCfg, oldServer, oldVerbose
		prompt, interactive = oldPrompt, oldInteractive
		estopYes, estopJSON, modeJSON = oldEStopYes, oldEStopJSON, oldModeJSON
	})

	cfgFile, serverURL, verbose = "", server, false
	estopYes, estopJSON, modeJSON = false, false, false
	interactive = func() bool { return false }
}

type fakePrompter struct {
	mode    snapshot.Mode
	release bool
	err     error
	asked   int
}

func (p *fakePrompter) SelectMode() (snapshot.Mode, error) {
	p.asked++
	return p.mode, p.err
}

func (p *fakePrompter) ConfirmRelease() (bool, error) {
	p.asked++
	return p.release, p.err
}

func usePrompter(p *fakePrompter) {
	prompt = p
	interactive = func() bool { return true }
}
