package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rileyhilliard/nevconsole/internal/errors"
	"gopkg.in/yaml.v3"
)

// Marshal renders cfg as commented YAML. Durations are written as strings
// like "2s" so the file round-trips through Load.
func Marshal(cfg *Config) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(parent *yaml.Node, key, comment string, value *yaml.Node) {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: key, HeadComment: comment}
		parent.Content = append(parent.Content, k, value)
	}
	scalar := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
	}
	str := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
	}
	boolean := func(v bool) *yaml.Node {
		if v {
			return scalar("true")
		}
		return scalar("false")
	}
	mapping := func() *yaml.Node {
		return &yaml.Node{Kind: yaml.MappingNode}
	}

	add(doc, "version", "", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(cfg.Version)})
	add(doc, "server", "Console backend base URL. The state feed uses ws:// or wss:// on the same host.", str(cfg.Server))

	feed := mapping()
	add(feed, "path", "", str(cfg.Feed.Path))
	add(feed, "reconnect_delay", "Fixed wait after every close before redialing.", scalar(cfg.Feed.ReconnectDelay.String()))
	add(doc, "feed", "", feed)

	media := mapping()
	add(media, "enabled", "", boolean(cfg.Media.Enabled))
	add(media, "retry_delay", "Fixed wait before a failed video session is rebuilt.", scalar(cfg.Media.RetryDelay.String()))
	add(media, "gather_timeout", "", scalar(cfg.Media.GatherTimeout.String()))
	ice := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range cfg.Media.ICEServers {
		ice.Content = append(ice.Content, str(s))
	}
	add(media, "ice_servers", "stun: or turn: URLs. Empty uses host candidates only.", ice)
	add(doc, "media", "", media)

	commands := mapping()
	add(commands, "timeout", "", scalar(cfg.Commands.Timeout.String()))
	add(doc, "commands", "", commands)

	log := mapping()
	add(log, "level", "debug, info, warn or error", str(cfg.Log.Level))
	add(log, "file", "Dashboard log file. Empty uses the user cache directory.", str(cfg.Log.File))
	add(doc, "log", "", log)

	metrics := mapping()
	add(metrics, "addr", "Prometheus listen address, e.g. \":9464\". Empty disables it.", str(cfg.Metrics.Addr))
	add(doc, "metrics", "", metrics)

	out, err := yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to render config", "")
	}
	return out, nil
}

// Write saves cfg to path. An existing file is only replaced when force is set.
func Write(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config already exists: "+path,
			"Use --force to overwrite it")
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory",
			"Check directory permissions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check file permissions")
	}
	return nil
}
