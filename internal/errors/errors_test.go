package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrTransport,
		ErrParse,
		ErrNegotiation,
		ErrCommand,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .nevconsole.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "command error",
			code:       ErrCommand,
			message:    "E-stop command rejected",
			suggestion: "Check the backend log",
		},
		{
			name:       "negotiation error",
			code:       ErrNegotiation,
			message:    "Video negotiation failed",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := WrapWithCode(fmt.Errorf("dial tcp: connection refused"), ErrTransport,
		"Can't reach the console backend",
		"Check that the server is running")

	msg := err.Error()
	lines := strings.Split(msg, "\n")
	assert.Equal(t, "✗ Can't reach the console backend", lines[0])
	assert.Contains(t, msg, "  dial tcp: connection refused")
	assert.Contains(t, msg, "  Check that the server is running")
}

func TestErrorFormatting_NoCauseNoSuggestion(t *testing.T) {
	err := New(ErrParse, "bad frame", "")
	assert.Equal(t, "✗ bad frame\n", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, "feed closed")

	assert.Equal(t, ErrTransport, err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestErrorsIsAndAs(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapWithCode(cause, ErrCommand, "request failed", "")

	assert.True(t, errors.Is(err, cause))

	var target *Error
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &target))
	assert.Equal(t, ErrCommand, target.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrNegotiation, "x", "")

	assert.True(t, IsCode(err, ErrNegotiation))
	assert.False(t, IsCode(err, ErrCommand))
	assert.False(t, IsCode(nil, ErrCommand))
	assert.False(t, IsCode(errors.New("plain"), ErrCommand))
	assert.True(t, IsCode(fmt.Errorf("wrapped: %w", err), ErrNegotiation))
}

func TestShortAndSummary(t *testing.T) {
	withCause := WrapWithCode(errors.New("EOF"), ErrTransport, "feed closed", "ignored")
	assert.Equal(t, "feed closed: EOF", withCause.Short())
	assert.Equal(t, "bare", New(ErrParse, "bare", "").Short())

	assert.Equal(t, "feed closed: EOF", Summary(fmt.Errorf("ctx: %w", withCause)))
	assert.Equal(t, "plain", Summary(errors.New("plain")))
	assert.Equal(t, "", Summary(nil))
}
