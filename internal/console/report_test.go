package console

import (
	"testing"

	"github.com/rileyhilliard/nevconsole/internal/render"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	s, err := snapshot.Parse([]byte(`{"mux": {"requested_mode": 2}, "control": {"estop": true}}`))
	require.NoError(t, err)

	out := Report(render.Project(s), 0)
	assert.Contains(t, out, "REMOTE")
	assert.Contains(t, out, "E-STOP ACTIVE")
	assert.NotContains(t, out, "press space")
	assert.NotContains(t, out, "nevconsole")
}

func TestReport_NoData(t *testing.T) {
	out := Report(render.Project(nil), 40)
	assert.Contains(t, out, "e-stop "+render.NoDataMarker)
}
