package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/feedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateFrame = `{"mux": {"requested_mode": 1}, "control": {"estop": true}}`

func decodeEnvelope(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(b, &env))
	return env
}

func TestSnapshot_FromFeedJSON(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()
	srv.SetInitial(stateFrame)
	isolate(t, srv.URL)

	var buf bytes.Buffer
	err := snapshotCommand(context.Background(), &buf, snapshotOptions{JSON: true, Timeout: 2 * time.Second})
	require.NoError(t, err)

	env := decodeEnvelope(t, buf.Bytes())
	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	assert.Equal(t, true, data["estop_active"])
	assert.Equal(t, float64(1), data["mode"].(map[string]any)["code"])
	assert.NotEmpty(t, data["blocks"])
}

func TestSnapshot_FromHTTPText(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()
	srv.SetInitial(stateFrame)
	isolate(t, srv.URL)

	var buf bytes.Buffer
	err := snapshotCommand(context.Background(), &buf, snapshotOptions{HTTP: true, Timeout: 2 * time.Second})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "E-STOP ACTIVE")
	assert.Contains(t, buf.String(), "NAV")
	assert.Zero(t, srv.Accepted())
}

func TestSnapshot_TimesOutWithoutState(t *testing.T) {
	srv := feedtest.NewServer()
	defer srv.Close()
	isolate(t, srv.URL)

	var buf bytes.Buffer
	err := snapshotCommand(context.Background(), &buf, snapshotOptions{JSON: true, Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))

	env := decodeEnvelope(t, buf.Bytes())
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "TRANSPORT", env["error"].(map[string]any)["code"])
}

func TestSnapshot_UnreachableBackend(t *testing.T) {
	srv := feedtest.NewServer()
	url := srv.URL
	srv.Close()
	isolate(t, url)

	err := snapshotCommand(context.Background(), &bytes.Buffer{}, snapshotOptions{Timeout: 300 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))
}
