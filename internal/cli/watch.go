package cli

import (
	"context"
	stderrors "errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/nevconsole/internal/api"
	"github.com/rileyhilliard/nevconsole/internal/command"
	"github.com/rileyhilliard/nevconsole/internal/config"
	"github.com/rileyhilliard/nevconsole/internal/console"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/feed"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/media"
	"github.com/rileyhilliard/nevconsole/internal/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type watchOptions struct {
	NoVideo     bool
	MetricsAddr string
}

var watchOpts watchOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live operator dashboard",
	Long: `Open the live operator dashboard.

The dashboard follows the state feed, reconnecting every 2s after a drop,
and keeps a video session up, rebuilding it 3s after any failure. Logs go
to a file while the dashboard owns the terminal.

Keys:
  space      engage e-stop (press twice to release)
  i c n r    request IDLE, CTRL, NAV, REMOTE
  v          restart video
  f          reconnect the state feed
  ?          help
  q          quit

Examples:
  nevconsole watch
  nevconsole watch --server http://10.0.0.5:8080 --no-video
  nevconsole watch --metrics-addr :9464`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchOpts)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOpts.NoVideo, "no-video", false, "don't start a video session")
	watchCmd.Flags().StringVar(&watchOpts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(watchCmd)
}

// session is everything the dashboard runs against.
type session struct {
	cfg        *config.Config
	metrics    *metrics.Collector
	feed       *feed.Manager
	negotiator *media.Negotiator
	meter      *media.Meter
	commands   *command.Dispatcher
}

// newSession wires the feed, media and command components from cfg. The
// negotiator and meter are nil when video is disabled.
func newSession(cfg *config.Config, log logger.Logger) (*session, error) {
	client, err := api.New(cfg.Server, cfg.Commands.Timeout)
	if err != nil {
		return nil, err
	}
	wsURL, err := feed.URL(cfg.Server, cfg.Feed.Path)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, metrics: metrics.NewCollector()}
	s.feed = feed.NewManager(feed.Options{
		URL:            wsURL,
		ReconnectDelay: cfg.Feed.ReconnectDelay,
		Logger:         logger.With(log, "feed"),
		Metrics:        s.metrics,
	})
	s.commands = command.New(client, command.Options{
		Timeout: cfg.Commands.Timeout,
		Logger:  logger.With(log, "command"),
		Metrics: s.metrics,
	})

	if cfg.Media.Enabled {
		s.meter = media.NewMeter()
		s.negotiator = media.NewNegotiator(media.Options{
			RetryDelay: cfg.Media.RetryDelay,
			Factory: media.PionFactory{
				ICEServers:    cfg.Media.ICEServers,
				GatherTimeout: cfg.Media.GatherTimeout,
			},
			Signaler: client,
			Sink:     s.meter,
			Logger:   logger.With(log, "media"),
			Metrics:  s.metrics,
		})
	}
	return s, nil
}

// consoleOptions keeps disabled video as nil interfaces rather than typed
// nil pointers.
func (s *session) consoleOptions() console.Options {
	opts := console.Options{
		Server:   s.cfg.Server,
		Feed:     s.feed,
		Commands: s.commands,
		Metrics:  s.metrics,
	}
	if s.negotiator != nil {
		opts.Media = s.negotiator
		opts.Meter = s.meter
	}
	return opts
}

// run drives every background loop until ctx is done or the UI returns.
func (s *session) run(ctx context.Context, ui func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.feed.Run(gctx) })
	if s.negotiator != nil {
		g.Go(func() error { return s.negotiator.Run(gctx) })
	}
	if s.cfg.Metrics.Addr != "" {
		g.Go(func() error {
			if err := s.metrics.Serve(gctx, s.cfg.Metrics.Addr); err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					"Couldn't serve metrics on "+s.cfg.Metrics.Addr,
					"Pick a free address with --metrics-addr or metrics.addr")
			}
			return nil
		})
	}
	g.Go(func() error {
		// Quitting the UI stops everything else.
		defer cancel()
		return ui(gctx)
	})

	return g.Wait()
}

func watchCommand(ctx context.Context, opts watchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.NoVideo {
		cfg.Media.Enabled = false
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	log, closer, err := openDashboardLog(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info("starting dashboard against %s", cfg.Server)

	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}

	return s.run(ctx, func(ctx context.Context) error {
		p := tea.NewProgram(console.NewModel(s.consoleOptions()),
			tea.WithAltScreen(),
			tea.WithContext(ctx))
		_, err := p.Run()
		if stderrors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
}

// openDashboardLog sends logs to a file, since the dashboard owns stderr.
func openDashboardLog(cfg *config.Config) (logger.Logger, io.Closer, error) {
	path := cfg.LogPath()
	log, closer, err := logger.NewFileLogger(path, "", cfg.Log.Level == "debug")
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open log file "+path,
			"Set log.file to a writable path")
	}
	return logger.WithLevel(log, cfg.Log.Level), closer, nil
}
