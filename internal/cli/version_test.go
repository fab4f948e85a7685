package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.2.3", "v1.2.3"},
		{"v1.2.3", "v1.2.3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in))
	}
}

func TestVersionCommand(t *testing.T) {
	old := [3]string{version, commit, date}
	t.Cleanup(func() { SetVersionInfo(old[0], old[1], old[2]) })
	SetVersionInfo("1.4.0", "abc123", "2026-01-02")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "nevconsole v1.4.0")
	assert.Contains(t, buf.String(), "commit: abc123")
	assert.Equal(t, "1.4.0", GetVersion())
}
