package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// Config represents the complete .nevconsole.yaml configuration file.
type Config struct {
	Version  int            `yaml:"version" mapstructure:"version"`
	Server   string         `yaml:"server" mapstructure:"server"`
	Feed     FeedConfig     `yaml:"feed" mapstructure:"feed"`
	Media    MediaConfig    `yaml:"media" mapstructure:"media"`
	Commands CommandsConfig `yaml:"commands" mapstructure:"commands"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// FeedConfig controls the state feed connection.
type FeedConfig struct {
	// Path is the websocket path on the server.
	Path string `yaml:"path" mapstructure:"path"`

	// ReconnectDelay is the fixed pause after every close before redialing.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`
}

// MediaConfig controls the live video session.
type MediaConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// RetryDelay is the fixed pause before a failed session is rebuilt.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`

	// GatherTimeout bounds ICE gathering before the offer is sent anyway.
	GatherTimeout time.Duration `yaml:"gather_timeout" mapstructure:"gather_timeout"`

	// ICEServers are stun: or turn: URLs. Empty means host candidates only.
	ICEServers []string `yaml:"ice_servers" mapstructure:"ice_servers"`
}

// CommandsConfig controls operator commands.
type CommandsConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`

	// File receives logs while the dashboard owns the terminal. Empty means
	// a file under the user cache directory.
	File string `yaml:"file" mapstructure:"file"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is a listen address like ":9464". Empty disables the endpoint.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a Config with the standard console settings.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server:  "http://localhost:8080",
		Feed: FeedConfig{
			Path:           "/ws",
			ReconnectDelay: 2 * time.Second,
		},
		Media: MediaConfig{
			Enabled:       true,
			RetryDelay:    3 * time.Second,
			GatherTimeout: 3 * time.Second,
			ICEServers:    []string{},
		},
		Commands: CommandsConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
