//go:build !windows

package target

import (
	"os/exec"
	"testing"

	"github.com/joeycumines/escapesentry/internal/procreg"
	"github.com/stretchr/testify/require"
)

func TestSpawnProcess_tracksPID(t *testing.T) {
	cmd := exec.Command("sleep", "5")
	started, err := SpawnProcess(cmd)
	require.NoError(t, err)
	pid := started.Process.Pid

	require.True(t, procreg.Live()[pid])

	require.NoError(t, started.Process.Kill())
	_ = started.Wait()
	UntrackProcess(started)
	require.False(t, procreg.Live()[pid])
}
