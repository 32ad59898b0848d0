package target

import (
	"os/exec"

	"github.com/joeycumines/escapesentry/internal/procreg"
)

// SpawnProcess starts cmd and registers its PID in the same runtime-owned
// registry internal/isolate uses for its own re-exec'd children, making an
// externally-spawned child process visible to the Snapshot Probe. A target
// that calls this and never calls UntrackProcess (or Cmd.Wait followed by
// it) is exhibiting exactly the escape S5 exercises.
func SpawnProcess(cmd *exec.Cmd) (*exec.Cmd, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	procreg.Track(cmd.Process.Pid)
	return cmd, nil
}

// UntrackProcess removes cmd's PID from the live registry, for a target
// that did join the process it spawned.
func UntrackProcess(cmd *exec.Cmd) {
	if cmd.Process != nil {
		procreg.Untrack(cmd.Process.Pid)
	}
}
