package cli

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/config"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/feed"
	"github.com/rileyhilliard/nevconsole/internal/feedtest"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(server string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server = server
	cfg.Feed.ReconnectDelay = 50 * time.Millisecond
	return cfg
}

func TestNewSession_VideoDisabled(t *testing.T) {
	cfg := testConfig("http://localhost:8080")
	cfg.Media.Enabled = false

	s, err := newSession(cfg, logger.Noop())
	require.NoError(t, err)
	assert.Nil(t, s.negotiator)
	assert.Nil(t, s.meter)

	opts := s.consoleOptions()
	assert.Nil(t, opts.Media)
	assert.Nil(t, opts.Meter)
	assert.NotNil(t, opts.Feed)
	assert.NotNil(t, opts.Commands)
	assert.Equal(t, "http://localhost:8080", opts.Server)
}

func TestNewSession_VideoEnabled(t *testing.T) {
	s, err := newSession(testConfig("https://console.example.com"), logger.Noop())
	require.NoError(t, err)
	require.NotNil(t, s.negotiator)

	opts := s.consoleOptions()
	assert.NotNil(t, opts.Media)
	assert.NotNil(t, opts.Meter)
}

func TestSession_RunStopsWhenUIReturns(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()
	srv.SetInitial(stateFrame)

	cfg := testConfig(srv.URL)
	cfg.Media.Enabled = false
	s, err := newSession(cfg, logger.NewBufferLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- s.run(context.Background(), func(ctx context.Context) error {
			s.feed.Connect()
			for ev := range s.feed.Events() {
				if ev.Kind == feed.EventSnapshot {
					return nil
				}
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not stop after the UI returned")
	}
	assert.Equal(t, int64(1), s.metrics.Totals().Snapshots)
	assert.True(t, srv.WaitForClients(0))
}

func TestSession_MetricsListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig("http://127.0.0.1:1")
	cfg.Media.Enabled = false
	cfg.Metrics.Addr = busy.Addr().String()
	s, err := newSession(cfg, logger.Noop())
	require.NoError(t, err)

	err = s.run(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestOpenDashboardLog(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.File = t.TempDir() + "/nested/console.log"

	log, closer, err := openDashboardLog(cfg)
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closer.Close())
}
