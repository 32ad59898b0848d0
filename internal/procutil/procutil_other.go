//go:build !linux

package procutil

import (
	"os"
	"os/exec"
)

// IsolateChild is a best-effort no-op on platforms without POSIX process
// groups; the caller is responsible for only attaching the fds it intends
// the child to have.
func IsolateChild(cmd *exec.Cmd) {}

// KillGroup falls back to killing just the named process; grandchildren
// spawned by it may survive on non-Linux platforms.
func KillGroup(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
