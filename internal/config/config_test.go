package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, "/ws", cfg.Feed.Path)
	assert.Equal(t, 2*time.Second, cfg.Feed.ReconnectDelay)
	assert.True(t, cfg.Media.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Media.RetryDelay)
	assert.Equal(t, 3*time.Second, cfg.Media.GatherTimeout)
	assert.Empty(t, cfg.Media.ICEServers)
	assert.Equal(t, 5*time.Second, cfg.Commands.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ConfigFileName, `
version: 1
server: "http://10.0.0.5:8080/"
feed:
  reconnect_delay: 500ms
media:
  enabled: false
  ice_servers: ["stun:stun.example.com:3478"]
log:
  level: DEBUG
metrics:
  addr: ":9464"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080", cfg.Server)
	assert.Equal(t, "/ws", cfg.Feed.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Feed.ReconnectDelay)
	assert.False(t, cfg.Media.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Media.RetryDelay)
	assert.Equal(t, []string{"stun:stun.example.com:3478"}, cfg.Media.ICEServers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
	assert.NoError(t, Validate(cfg))
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ConfigFileName, "server: http://a:1\n")

	t.Setenv("NEVC_SERVER", "https://b:2")
	t.Setenv("NEVC_COMMANDS_TIMEOUT", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://b:2", cfg.Server)
	assert.Equal(t, 250*time.Millisecond, cfg.Commands.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	bad := writeFile(t, dir, "bad.yaml", "server: [unclosed\n")
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cwd := t.TempDir()
	t.Chdir(cwd)

	path, err := Find("")
	require.NoError(t, err)
	assert.Empty(t, path)

	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(global), 0o755))
	require.NoError(t, os.WriteFile(global, []byte("version: 1\n"), 0o644))
	path, err = Find("")
	require.NoError(t, err)
	assert.Equal(t, global, path)

	local := writeFile(t, cwd, ConfigFileName, "version: 1\n")
	path, err = Find("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(local), filepath.Base(path))

	explicit := writeFile(t, t.TempDir(), "custom.yaml", "version: 1\n")
	path, err = Find(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	_, err = Find(filepath.Join(cwd, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("NEVC_LOG_LEVEL", "warn")

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"future version", func(c *Config) { c.Version = 99 }, "from the future"},
		{"no server", func(c *Config) { c.Server = "" }, "No server"},
		{"ws scheme", func(c *Config) { c.Server = "ws://host:8080" }, "http or https"},
		{"no host", func(c *Config) { c.Server = "http://" }, "no host"},
		{"relative feed path", func(c *Config) { c.Feed.Path = "ws" }, "feed.path"},
		{"zero reconnect", func(c *Config) { c.Feed.ReconnectDelay = 0 }, "feed.reconnect_delay"},
		{"negative retry", func(c *Config) { c.Media.RetryDelay = -time.Second }, "media.retry_delay"},
		{"zero gather", func(c *Config) { c.Media.GatherTimeout = 0 }, "media.gather_timeout"},
		{"zero command timeout", func(c *Config) { c.Commands.Timeout = 0 }, "commands.timeout"},
		{"bad ice server", func(c *Config) { c.Media.ICEServers = []string{"http://x"} }, "ICE server"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad metrics addr", func(c *Config) { c.Metrics.Addr = "9464" }, "metrics.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server = "https://console.example.com"
	cfg.Media.ICEServers = []string{"stun:a:3478", "turn:b:3478", "turns:c:5349"}
	cfg.Metrics.Addr = "127.0.0.1:9464"
	assert.NoError(t, Validate(cfg))
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Server = "http://10.1.1.1:8080"
	cfg.Feed.ReconnectDelay = 1500 * time.Millisecond
	cfg.Media.ICEServers = []string{"stun:stun.example.com:3478"}
	require.NoError(t, Write(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reconnect_delay: 1.5s")
	assert.Contains(t, string(data), "# Fixed wait after every close")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), ConfigFileName, "version: 1\n")

	err := Write(path, DefaultConfig(), false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	require.NoError(t, Write(path, DefaultConfig(), true))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/ws", cfg.Feed.Path)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandTilde(""))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "logs/x.log"), ExpandTilde("~/logs/x.log"))
	assert.Equal(t, "/abs/path", ExpandTilde("/abs/path"))
	assert.Equal(t, "~other/x", ExpandTilde("~other/x"))
}

func TestLogPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "nevconsole.log", filepath.Base(cfg.LogPath()))

	cfg.Log.File = "/var/log/nev.log"
	assert.Equal(t, "/var/log/nev.log", cfg.LogPath())
}
