package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DebugLevel(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		debug     bool
		expectLog bool
	}{
		{name: "logs when NEVC_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs when debug flag is set", debug: true, expectLog: true},
		{name: "does not log by default", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DebugEnv, tt.envValue)

			var buf bytes.Buffer
			l := New(&buf, "test", tt.debug)
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "test message arg")
				assert.Contains(t, buf.String(), `"component":"test"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestNew_Levels(t *testing.T) {
	t.Setenv(DebugEnv, "")

	var buf bytes.Buffer
	l := New(&buf, "feed", false)
	l.Info("opened %d", 1)
	l.Warn("closed %s", "abruptly")
	l.Error("broken")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[0], `"message":"opened 1"`)
	assert.Contains(t, lines[1], `"level":"warn"`)
	assert.Contains(t, lines[2], `"level":"error"`)
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := With(New(&buf, "", false), "media")
	l.Info("hello")
	assert.Contains(t, buf.String(), `"component":"media"`)

	b := NewBufferLogger()
	assert.Same(t, b, With(b, "media"))
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "console.log")

	l, closer, err := NewFileLogger(path, "console", false)
	require.NoError(t, err)
	l.Info("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNoopLogger(t *testing.T) {
	l := Noop()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	msgs := l.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug 1"}, msgs[0])
	assert.Equal(t, LogMessage{Level: "error", Message: "error 4"}, msgs[3])
	assert.True(t, l.HasLevel("warn"))

	l.Clear()
	assert.Empty(t, l.Messages())
	assert.False(t, l.HasLevel("warn"))
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	b := NewBufferLogger()
	SetDefault(b)
	Default().Info("via default")
	assert.True(t, b.HasLevel("info"))
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = &zeroLogger{}
	var _ Logger = &noopLogger{}
	var _ Logger = &BufferLogger{}
}

func TestWithLevel(t *testing.T) {
	t.Setenv(DebugEnv, "")

	var buf bytes.Buffer
	l := WithLevel(New(&buf, "", false), "warn")
	l.Info("dropped")
	l.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	buf.Reset()
	l = WithLevel(New(&buf, "", false), "debug")
	l.Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")

	b := NewBufferLogger()
	assert.Same(t, b, WithLevel(b, "error"))
}
