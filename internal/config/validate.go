package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/errors"
)

// LogLevels are the accepted log.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but nevconsole only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade nevconsole or lower the version field")
	}

	if err := validateServer(cfg.Server); err != nil {
		return err
	}

	if !strings.HasPrefix(cfg.Feed.Path, "/") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("feed.path %q must start with '/'", cfg.Feed.Path),
			"The backend serves the state feed at /ws")
	}

	durations := []struct {
		key string
		d   time.Duration
	}{
		{"feed.reconnect_delay", cfg.Feed.ReconnectDelay},
		{"media.retry_delay", cfg.Media.RetryDelay},
		{"media.gather_timeout", cfg.Media.GatherTimeout},
		{"commands.timeout", cfg.Commands.Timeout},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s must be positive, got %s", d.key, d.d),
				"Use a Go duration like 2s or 500ms")
		}
	}

	for _, s := range cfg.Media.ICEServers {
		if !strings.HasPrefix(s, "stun:") && !strings.HasPrefix(s, "turn:") && !strings.HasPrefix(s, "turns:") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("ICE server %q is not a stun: or turn: URL", s),
				"Example: stun:stun.l.google.com:19302")
		}
	}

	if !validLevel(cfg.Log.Level) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown log level %q", cfg.Log.Level),
			"Use one of: "+strings.Join(LogLevels, ", "))
	}

	if cfg.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("metrics.addr %q is not a listen address", cfg.Metrics.Addr),
				"Use host:port or :port, e.g. :9464")
		}
	}

	return nil
}

func validateServer(server string) error {
	if server == "" {
		return errors.New(errors.ErrConfig,
			"No server configured",
			"Set 'server' in .nevconsole.yaml or pass --server")
	}
	u, err := url.Parse(server)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Server %q is not a valid URL", server),
			"Example: http://192.168.1.20:8080")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server %q must use http or https", server),
			"The websocket URL is derived from it (ws or wss)")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server %q has no host", server),
			"Example: http://192.168.1.20:8080")
	}
	return nil
}

func validLevel(level string) bool {
	for _, l := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}
