package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/nevconsole/internal/config"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path      string // Where to write; empty means ./.nevconsole.yaml
	Server    string // Backend URL; empty keeps the default
	Global    bool   // Write ~/.config/nevconsole/config.yaml
	Overwrite bool   // Overwrite existing config without asking
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .nevconsole.yaml configuration",
	Long: `Write a config file with the default settings.

Examples:
  nevconsole init
  nevconsole init --server http://10.0.0.5:8080
  nevconsole init --global --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if opts.Server == "" {
			opts.Server = serverURL
		}
		return Init(cmd.OutOrStdout(), opts)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initOpts.Global, "global", false, "write the per-user config instead")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

// Init writes a new config file.
func Init(w io.Writer, opts InitOptions) error {
	path := opts.Path
	switch {
	case path != "":
	case opts.Global:
		path = config.GlobalPath()
		if path == "" {
			return errors.New(errors.ErrConfig,
				"Cannot determine the home directory",
				"Write a project config with 'nevconsole init' instead")
		}
	default:
		path = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if !interactive() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			ui.Muted(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Server != "" {
		cfg.Server = opts.Server
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(path, cfg, true); err != nil {
		return err
	}
	ui.Success(w, "Wrote "+path)
	return nil
}
