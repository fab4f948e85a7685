package console

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/nevconsole/internal/command"
	"github.com/rileyhilliard/nevconsole/internal/feed"
	"github.com/rileyhilliard/nevconsole/internal/media"
	"github.com/rileyhilliard/nevconsole/internal/metrics"
	"github.com/rileyhilliard/nevconsole/internal/render"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

// DefaultTick is how often the dashboard samples the video meter and
// refreshes relative times.
const DefaultTick = time.Second

// Feed is the state feed as the dashboard sees it. *feed.Manager implements it.
type Feed interface {
	Events() <-chan feed.Event
	Connect()
	Close()
}

// Media is the video session. *media.Negotiator implements it.
type Media interface {
	Events() <-chan media.Event
	Start()
}

// Commander sends operator commands. *command.Dispatcher implements it.
type Commander interface {
	SetMode(ctx context.Context, mode snapshot.Mode) (command.Result, error)
	SetEStop(ctx context.Context, active bool) (command.Result, error)
}

// MeterReader reports bytes received on the bound video track.
type MeterReader interface {
	Stats() media.MeterStats
}

// Options wires the dashboard to its sources. Media and Meter are nil when
// video is disabled.
type Options struct {
	Server   string
	Feed     Feed
	Media    Media
	Meter    MeterReader
	Commands Commander
	Metrics  *metrics.Collector
	Tick     time.Duration
}

// Outcome is the result of the last command the operator sent.
type Outcome struct {
	Label  string
	Result command.Result
	Err    error
	At     time.Time
}

// Model is the Bubble Tea model for the operator dashboard.
type Model struct {
	server   string
	feed     Feed
	media    Media
	meter    MeterReader
	commands Commander
	metrics  *metrics.Collector
	tick     time.Duration

	keys    KeyMap
	help    help.Model
	history *History

	// Last state reported by the backend. Operator actions never write here.
	view    render.View
	hasView bool
	health  feed.Health
	feedErr error

	phase    media.Phase
	mediaErr error
	codec    string

	lastBytes  uint64
	lastSample time.Time
	bitrate    float64

	lastCmd        *Outcome
	notice         string
	pendingRelease bool

	width    int
	height   int
	showHelp bool
	quitting bool
}

type feedMsg feed.Event

type feedClosedMsg struct{}

type mediaMsg media.Event

type mediaClosedMsg struct{}

type commandMsg Outcome

type tickMsg time.Time

// NewModel creates a dashboard. Every block starts in its no-data state.
func NewModel(opts Options) Model {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	m := Model{
		server:   opts.Server,
		feed:     opts.Feed,
		media:    opts.Media,
		meter:    opts.Meter,
		commands: opts.Commands,
		metrics:  opts.Metrics,
		tick:     opts.Tick,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		history:  NewHistory(DefaultHistorySize),
		view:     render.Project(nil),
		health:   feed.Unhealthy,
		phase:    media.PhaseOff,
	}
	return m
}

// Init connects the feed, starts video and begins listening to both.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.startCmd(), waitFeed(m.feed), m.tickCmd()}
	if m.media != nil {
		cmds = append(cmds, waitMedia(m.media))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case feedMsg:
		m.applyFeed(feed.Event(msg))
		return m, waitFeed(m.feed)

	case feedClosedMsg:
		m.health = feed.Unhealthy

	case mediaMsg:
		m.applyMedia(media.Event(msg))
		return m, waitMedia(m.media)

	case mediaClosedMsg:
		m.phase = media.PhaseOff

	case commandMsg:
		out := Outcome(msg)
		m.lastCmd = &out
		m.notice = ""

	case tickMsg:
		m.sampleMeter(time.Time(msg))
		return m, m.tickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Current returns the last projected view reported by the backend.
func (m Model) Current() render.View {
	return m.view
}

// Health returns the state feed health.
func (m Model) Health() feed.Health {
	return m.health
}

// MediaPhase returns the video session phase.
func (m Model) MediaPhase() media.Phase {
	return m.phase
}

// LastCommand returns the outcome of the last command, or nil.
func (m Model) LastCommand() *Outcome {
	return m.lastCmd
}

// Bitrate returns the sampled video bitrate in bytes per second.
func (m Model) Bitrate() float64 {
	return m.bitrate
}

func (m *Model) applyFeed(ev feed.Event) {
	switch ev.Kind {
	case feed.EventHealth:
		m.health = ev.Health
		m.feedErr = ev.Err

	case feed.EventSnapshot:
		m.view = ev.View
		m.hasView = true
		s := ev.Snapshot
		if s == nil {
			return
		}
		if s.Network != nil && s.Network.RTTMs != nil {
			m.history.Push(SeriesRTT, *s.Network.RTTMs)
		}
		if s.Resources != nil && s.Resources.CPUUsage != nil {
			m.history.Push(SeriesCPU, *s.Resources.CPUUsage)
		}
	}
}

func (m *Model) applyMedia(ev media.Event) {
	m.phase = ev.Phase
	m.mediaErr = ev.Err
	if ev.Phase == media.PhaseLive {
		m.codec = ev.Codec
	} else {
		m.codec = ""
	}
}

// sampleMeter turns the meter's byte count into a rate since the last tick.
func (m *Model) sampleMeter(now time.Time) {
	if m.meter == nil {
		return
	}
	st := m.meter.Stats()
	if !st.Bound {
		m.bitrate = 0
		m.lastBytes = 0
		m.lastSample = now
		return
	}
	if !m.lastSample.IsZero() && st.Bytes >= m.lastBytes {
		if dt := now.Sub(m.lastSample).Seconds(); dt > 0 {
			m.bitrate = float64(st.Bytes-m.lastBytes) / dt
		}
	}
	m.lastBytes = st.Bytes
	m.lastSample = now
	m.history.Push(SeriesBitrate, m.bitrate)
}

// send runs fn off the update loop and reports its outcome as a commandMsg.
func (m *Model) send(label string, fn func(context.Context, Commander) (command.Result, error)) tea.Cmd {
	if m.commands == nil {
		m.notice = "commands are disabled"
		return nil
	}
	c := m.commands
	m.notice = "sending " + label
	return func() tea.Msg {
		res, err := fn(context.Background(), c)
		return commandMsg{Label: label, Result: res, Err: err, At: time.Now()}
	}
}

func (m Model) startCmd() tea.Cmd {
	f, v := m.feed, m.media
	return func() tea.Msg {
		f.Connect()
		if v != nil {
			v.Start()
		}
		return nil
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitFeed(f Feed) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-f.Events()
		if !ok {
			return feedClosedMsg{}
		}
		return feedMsg(ev)
	}
}

func waitMedia(v Media) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-v.Events()
		if !ok {
			return mediaClosedMsg{}
		}
		return mediaMsg(ev)
	}
}
