package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/nevconsole/internal/api"
	"github.com/rileyhilliard/nevconsole/internal/command"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
	"github.com/rileyhilliard/nevconsole/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	modeJSON  bool
	estopJSON bool
	estopYes  bool
)

// prompter asks the operator to pick or confirm. Replaced in tests.
type prompter interface {
	SelectMode() (snapshot.Mode, error)
	ConfirmRelease() (bool, error)
}

var prompt prompter = huhPrompter{}

// interactive reports whether prompts can be shown. Replaced in tests.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var modeCmd = &cobra.Command{
	Use:   "mode [idle|ctrl|nav|remote]",
	Short: "Request a mux mode",
	Long: `Send a mode request to the backend. The request is sent once and never
retried. The mode shown by the dashboard only changes when the backend
reports it.

Without an argument an interactive picker is shown.

Examples:
  nevconsole mode remote
  nevconsole mode -1
  nevconsole mode`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"idle", "ctrl", "nav", "remote"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return modeCommand(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

var estopCmd = &cobra.Command{
	Use:   "estop on|off",
	Short: "Engage or release the emergency stop",
	Long: `Engage or release the operator emergency stop.

Releasing asks for confirmation unless --yes is given.

Examples:
  nevconsole estop on
  nevconsole estop off --yes`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return estopCommand(cmd.Context(), cmd.OutOrStdout(), args[0] == "on")
	},
}

func init() {
	modeCmd.Flags().BoolVar(&modeJSON, "json", false, "output in JSON format")
	estopCmd.Flags().BoolVar(&estopJSON, "json", false, "output in JSON format")
	estopCmd.Flags().BoolVarP(&estopYes, "yes", "y", false, "release without asking")
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(estopCmd)
}

func modeCommand(ctx context.Context, w io.Writer, args []string) error {
	var mode snapshot.Mode
	switch {
	case len(args) == 1:
		m, err := snapshot.ParseMode(args[0])
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrCommand,
				fmt.Sprintf("'%s' isn't a mode", args[0]),
				"Use idle, ctrl, nav or remote")
		}
		mode = m
	case interactive():
		m, err := prompt.SelectMode()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrCommand,
				"No mode selected", "Pass the mode as an argument")
		}
		mode = m
	default:
		return errors.New(errors.ErrCommand,
			"No mode given",
			"Pass one of idle, ctrl, nav or remote")
	}

	d, err := newDispatcher()
	if err != nil {
		return err
	}
	res, err := d.SetMode(orBackground(ctx), mode)
	return reportResult(w, modeJSON, "mode "+mode.String(), res, err)
}

func estopCommand(ctx context.Context, w io.Writer, active bool) error {
	if !active && !estopYes {
		if !interactive() {
			return errors.New(errors.ErrCommand,
				"Refusing to release the e-stop without confirmation",
				"Run interactively or pass --yes")
		}
		ok, err := prompt.ConfirmRelease()
		if err != nil || !ok {
			ui.Muted(w, "Cancelled.")
			return nil
		}
	}

	d, err := newDispatcher()
	if err != nil {
		return err
	}
	label := "e-stop release"
	if active {
		label = "e-stop engage"
	}
	res, err := d.SetEStop(orBackground(ctx), active)
	return reportResult(w, estopJSON, label, res, err)
}

func newDispatcher() (*command.Dispatcher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := api.New(cfg.Server, cfg.Commands.Timeout)
	if err != nil {
		return nil, err
	}
	return command.New(client, command.Options{
		Timeout: cfg.Commands.Timeout,
		Logger:  logger.With(logger.Default(), "command"),
	}), nil
}

// commandOutput is the --json payload for mode and estop.
type commandOutput struct {
	Command          string `json:"command"`
	Endpoint         string `json:"endpoint"`
	RequestID        string `json:"request_id,omitempty"`
	OK               bool   `json:"ok"`
	Error            string `json:"error,omitempty"`
	StationConnected *bool  `json:"station_connected,omitempty"`
	DurationMS       int64  `json:"duration_ms"`
}

func reportResult(w io.Writer, asJSON bool, label string, res command.Result, err error) error {
	if asJSON {
		out := commandOutput{
			Command:          label,
			Endpoint:         res.Endpoint,
			RequestID:        res.RequestID,
			OK:               res.OK,
			Error:            res.Error,
			StationConnected: res.StationConnected,
			DurationMS:       res.Duration.Milliseconds(),
		}
		if err != nil {
			_ = WriteJSONFromError(w, err, out)
			return err
		}
		return WriteJSONSuccess(w, out)
	}

	if err != nil {
		return err
	}
	ui.Success(w, fmt.Sprintf("%s accepted in %s", label, res.Duration.Round(time.Millisecond)))
	if res.StationConnected != nil && !*res.StationConnected {
		ui.Warning(w, "the station is offline, so the vehicle may not act on it yet")
	}
	if verbose {
		ui.Muted(w, "request "+res.RequestID)
	}
	return nil
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

type huhPrompter struct{}

func (huhPrompter) SelectMode() (snapshot.Mode, error) {
	options := make([]huh.Option[snapshot.Mode], 0, len(snapshot.Modes))
	for _, m := range snapshot.Modes {
		options = append(options, huh.NewOption(strings.ToLower(m.String()), m))
	}

	var selected snapshot.Mode
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[snapshot.Mode]().
				Title("Request which mode?").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return 0, err
	}
	return selected, nil
}

func (huhPrompter) ConfirmRelease() (bool, error) {
	var release bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Release the emergency stop?").
				Description("The vehicle may start moving.").
				Affirmative("Release").
				Negative("Keep engaged").
				Value(&release),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return release, nil
}
