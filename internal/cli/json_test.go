package cli

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToJSON(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))

	plain := ErrorToJSON(stderrors.New("boom"))
	assert.Equal(t, ErrCodeUnknown, plain.Code)
	assert.Equal(t, "boom", plain.Message)

	wrapped := errors.WrapWithCode(stderrors.New("dial tcp: refused"), errors.ErrTransport, "No state", "Start the backend")
	je := ErrorToJSON(wrapped)
	assert.Equal(t, errors.ErrTransport, je.Code)
	assert.Equal(t, "No state", je.Message)
	assert.Equal(t, "Start the backend", je.Suggestion)
	assert.Equal(t, "dial tcp: refused", je.Cause)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]int{"n": 1}))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, true, env["success"])
	assert.Equal(t, float64(1), env["data"].(map[string]any)["n"])
	assert.NotContains(t, env, "error")

	buf.Reset()
	require.NoError(t, WriteJSONFromError(&buf, errors.New(errors.ErrCommand, "Rejected", ""), nil))
	env = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "COMMAND", env["error"].(map[string]any)["code"])
}
