package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/api"
	"github.com/rileyhilliard/nevconsole/internal/config"
	"github.com/rileyhilliard/nevconsole/internal/console"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/feed"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/render"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
	"github.com/rileyhilliard/nevconsole/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DefaultSnapshotTimeout bounds how long snapshot waits for the first frame.
const DefaultSnapshotTimeout = 10 * time.Second

type snapshotOptions struct {
	JSON    bool
	HTTP    bool
	Timeout time.Duration
}

var snapshotOpts snapshotOptions

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the current vehicle state once",
	Long: `Connect to the state feed, wait for one snapshot and print it.

With --http the state is fetched from /api/state instead of the websocket.

Examples:
  nevconsole snapshot
  nevconsole snapshot --json | jq .data.estop_active
  nevconsole snapshot --http --timeout 3s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd.Context(), cmd.OutOrStdout(), snapshotOpts)
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotOpts.JSON, "json", false, "output in JSON format")
	snapshotCmd.Flags().BoolVar(&snapshotOpts.HTTP, "http", false, "fetch from /api/state instead of the websocket feed")
	snapshotCmd.Flags().DurationVar(&snapshotOpts.Timeout, "timeout", DefaultSnapshotTimeout, "how long to wait for state")
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotCommand(ctx context.Context, w io.Writer, opts snapshotOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var spin *ui.Spinner
	if !opts.JSON && term.IsTerminal(int(os.Stderr.Fd())) {
		spin = ui.NewSpinner(os.Stderr, "Fetching state from "+cfg.Server)
		spin.Start()
	}

	var s *snapshot.Snapshot
	if opts.HTTP {
		s, err = fetchState(ctx, cfg)
	} else {
		s, err = firstSnapshot(ctx, cfg, logger.Default())
	}
	if err != nil {
		if spin != nil {
			spin.Fail("")
		}
		if opts.JSON {
			_ = WriteJSONFromError(w, err, nil)
		}
		return err
	}
	if spin != nil {
		spin.Success("")
	}

	view := render.Project(s)
	if opts.JSON {
		return WriteJSONSuccess(w, view)
	}
	_, err = fmt.Fprintln(w, console.Report(view, terminalWidth()))
	return err
}

func fetchState(ctx context.Context, cfg *config.Config) (*snapshot.Snapshot, error) {
	client, err := api.New(cfg.Server, cfg.Commands.Timeout)
	if err != nil {
		return nil, err
	}
	return client.State(ctx)
}

// firstSnapshot runs a feed manager until it delivers one snapshot.
func firstSnapshot(ctx context.Context, cfg *config.Config, log logger.Logger) (*snapshot.Snapshot, error) {
	wsURL, err := feed.URL(cfg.Server, cfg.Feed.Path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mgr := feed.NewManager(feed.Options{
		URL:            wsURL,
		ReconnectDelay: cfg.Feed.ReconnectDelay,
		Logger:         logger.With(log, "feed"),
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = mgr.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()
	mgr.Connect()

	var lastErr error
	for {
		select {
		case ev, ok := <-mgr.Events():
			if !ok {
				return nil, snapshotTimeout(wsURL, lastErr)
			}
			switch {
			case ev.Kind == feed.EventSnapshot:
				return ev.Snapshot, nil
			case ev.Err != nil:
				lastErr = ev.Err
				log.Debug("feed closed: %s", errors.Summary(ev.Err))
			}
		case <-ctx.Done():
			return nil, snapshotTimeout(wsURL, lastErr)
		}
	}
}

func snapshotTimeout(url string, cause error) error {
	if cause == nil {
		cause = context.DeadlineExceeded
	}
	return errors.WrapWithCode(cause, errors.ErrTransport,
		"No state received from "+url,
		"Check that the console backend is running, or raise --timeout")
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
