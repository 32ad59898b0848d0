//go:build linux

package snapshot

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

func ownPID() int { return os.Getpid() }

// osChildProcesses reads /proc to find direct children of parent, the
// idiomatic Go translation of
// _examples/original_source/graphene_ha/test_harness.py's
// _get_child_processes_from_proc: a bufio.Scanner over each /proc/<pid>/status
// file rather than ad-hoc string splitting.
func osChildProcesses(parent int) []procInfo {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	var out []procInfo
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		f, err := os.Open("/proc/" + entry.Name() + "/status")
		if err != nil {
			continue
		}

		var ppid int
		var name string
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "PPid:"):
				ppid, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "PPid:")))
			case strings.HasPrefix(line, "Name:"):
				name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			}
		}
		f.Close()

		if ppid == parent {
			out = append(out, procInfo{pid: pid, name: name})
		}
	}
	return out
}

func alive(pid int) bool {
	_, err := os.Stat("/proc/" + strconv.Itoa(pid))
	return err == nil
}

func cmdline(pid int) string {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/cmdline")
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(strings.TrimRight(string(b), "\x00"), "\x00", " ")
}
