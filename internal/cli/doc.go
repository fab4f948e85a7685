// Package cli implements the nevconsole command-line interface.
//
// # Command Structure
//
// The root command is "nevconsole" with subcommands:
//
//	nevconsole watch            - Live operator dashboard (default)
//	nevconsole snapshot         - Print the current vehicle state once
//	nevconsole mode [mode]      - Request a mux mode
//	nevconsole estop on|off     - Engage or release the e-stop
//	nevconsole init             - Create .nevconsole.yaml
//	nevconsole version          - Print version information
//	nevconsole completion       - Generate shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --server, --verbose, --no-color) are defined on
// the root command and available to all subcommands. --server overrides the
// server from the config file and NEVC_SERVER.
//
// Every command that talks to the backend loads and validates the config
// first, so a bad file fails before anything is dialed.
package cli
