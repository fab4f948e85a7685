package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/nevconsole/internal/config"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile   string
	serverURL string
	verbose   bool
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "nevconsole",
	Short: "Terminal operator console for a remotely supervised vehicle",
	Long: `nevconsole shows live vehicle state from the console backend and sends
operator commands (mode changes and the emergency stop).

Run with no subcommand to open the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		if verbose {
			logger.SetDefault(logger.NewConsoleLogger(os.Stderr, "", true))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchOptions{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .nevconsole.yaml, then ~/.config/nevconsole/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "console backend URL, overrides the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// loadConfig resolves the config, applies --server and validates it.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if isUnknownCommandError(err) {
			fmt.Fprintf(os.Stderr, "Error: %s\nRun 'nevconsole --help' for usage.\n", err)
			os.Exit(2)
		}
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError renders structured errors in their multi-line form.
func formatError(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Error()
	}
	return "✗ " + err.Error() + "\n"
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
