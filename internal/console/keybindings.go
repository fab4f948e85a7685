package console

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/nevconsole/internal/command"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

// KeyMap is the dashboard's key bindings.
type KeyMap struct {
	EStop       key.Binding
	Idle        key.Binding
	Ctrl        key.Binding
	Nav         key.Binding
	Remote      key.Binding
	RestartView key.Binding
	Reconnect   key.Binding
	Help        key.Binding
	Close       key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		EStop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "e-stop (twice to release)"),
		),
		Idle: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "mode IDLE"),
		),
		Ctrl: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "mode CTRL"),
		),
		Nav: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "mode NAV"),
		),
		Remote: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "mode REMOTE"),
		),
		RestartView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "restart video"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "reconnect feed"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.EStop, k.Remote, k.RestartView, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.EStop, k.Idle, k.Ctrl, k.Nav, k.Remote},
		{k.RestartView, k.Reconnect, k.Help, k.Close, k.Quit},
	}
}

// modeKeys pairs each mode binding with the mode it requests.
func (k KeyMap) modeKeys() []struct {
	binding key.Binding
	mode    snapshot.Mode
} {
	return []struct {
		binding key.Binding
		mode    snapshot.Mode
	}{
		{k.Idle, snapshot.ModeIdle},
		{k.Ctrl, snapshot.ModeCtrl},
		{k.Nav, snapshot.ModeNav},
		{k.Remote, snapshot.ModeRemote},
	}
}

// HandleKeyMsg processes keyboard input. Returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// A pending release survives only until the next key.
	releasing := m.pendingRelease
	m.pendingRelease = false
	if releasing {
		m.notice = ""
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, m.keys.Close) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.EStop):
		return true, m.estopKey(releasing)

	case key.Matches(msg, m.keys.RestartView):
		if m.media == nil {
			m.notice = "video is disabled"
			return true, nil
		}
		m.media.Start()
		m.notice = "restarting video session"
		return true, nil

	case key.Matches(msg, m.keys.Reconnect):
		m.feed.Close()
		m.feed.Connect()
		m.notice = "reconnecting state feed"
		return true, nil
	}

	for _, mk := range m.keys.modeKeys() {
		if key.Matches(msg, mk.binding) {
			mode := mk.mode
			return true, m.send("mode "+mode.String(), func(ctx context.Context, c Commander) (command.Result, error) {
				return c.SetMode(ctx, mode)
			})
		}
	}

	return false, nil
}

// estopKey engages the e-stop on the first press. Releasing needs a second
// press while the backend reports the e-stop as active.
func (m *Model) estopKey(releasing bool) tea.Cmd {
	active := m.view.EStopActive != nil && *m.view.EStopActive
	switch {
	case !active:
		return m.send("e-stop engage", func(ctx context.Context, c Commander) (command.Result, error) {
			return c.SetEStop(ctx, true)
		})
	case releasing:
		return m.send("e-stop release", func(ctx context.Context, c Commander) (command.Result, error) {
			return c.SetEStop(ctx, false)
		})
	default:
		m.pendingRelease = true
		m.notice = "press space again to release the e-stop"
		return nil
	}
}
