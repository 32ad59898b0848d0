// Package snapshot implements the Snapshot Probe (SPEC_FULL.md §4.1): it
// enumerates the currently-live workers (goroutines registered via
// internal/target, child processes registered via internal/procreg, and
// child processes visible in the OS process table) at an instant, and
// diffs two such snapshots into a model.EscapeDetails.
package snapshot

import (
	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/procreg"
	"github.com/joeycumines/escapesentry/internal/target"
)

// procInfo is one entry from the OS process table, filtered to children of
// the calling process.
type procInfo struct {
	pid  int
	name string
}

// Set is an atomic enumeration of every worker identity visible at the
// instant it was taken.
type Set struct {
	WorkerIDs map[uint64]target.Worker
	// RegisteredPIDs is source (a): the runtime's own child-process
	// registry, populated by internal/isolate via internal/procreg.
	RegisteredPIDs map[int]bool
	// OSChildren is source (b): the OS process table, filtered to direct
	// children of the current process, read fresh at snapshot time.
	OSChildren map[int]string
}

// Snapshot captures the current live-worker set. It never sleeps; the
// settle delay required by SPEC_FULL.md §4.1 is the caller's (the Harness's)
// responsibility, so Snapshot can also be used for the pre-invocation
// baseline where no delay is wanted.
func Snapshot() Set {
	workers := target.LiveWorkers()
	ids := make(map[uint64]target.Worker, len(workers))
	for _, w := range workers {
		ids[w.ID] = w
	}

	osChildren := map[int]string{}
	for _, c := range osChildProcesses(ownPID()) {
		osChildren[c.pid] = c.name
	}

	return Set{
		WorkerIDs:      ids,
		RegisteredPIDs: procreg.Live(),
		OSChildren:     osChildren,
	}
}

// Diff applies strict set subtraction: every worker present in post but
// absent from pre, enriched with the metadata the probe has on hand. A
// worker present in both is never reported here, regardless of any change
// to its name or state between the two snapshots.
func Diff(pre, post Set) model.EscapeDetails {
	var details model.EscapeDetails

	for id, w := range post.WorkerIDs {
		if _, seen := pre.WorkerIDs[id]; seen {
			continue
		}
		details.Goroutines = append(details.Goroutines, model.ThreadEscape{
			ThreadID: workerIDString(id),
			Name:     w.Name,
			IsDaemon: w.Daemon,
			State:    "running",
		})
	}

	reported := map[int]bool{}

	// Source (a): the runtime's own registry. Most reliable — anything
	// found here is unconditionally reported, system-binary suppression
	// only applies to source (b).
	for pid := range post.RegisteredPIDs {
		if pre.RegisteredPIDs[pid] {
			continue
		}
		if !alive(pid) {
			continue
		}
		name := post.OSChildren[pid]
		details.Processes = append(details.Processes, model.ProcessEscape{PID: pid, Name: name, Cmdline: cmdline(pid)})
		reported[pid] = true
	}

	// Source (b): the OS process table, to catch spawn races the registry
	// missed. Suppressed for well-known system binaries, as required by
	// SPEC_FULL.md §4.1.
	for pid, name := range post.OSChildren {
		if reported[pid] || pre.OSChildren[pid] != "" {
			continue
		}
		if !alive(pid) {
			continue
		}
		if isSuppressed(name) {
			continue
		}
		details.Processes = append(details.Processes, model.ProcessEscape{PID: pid, Name: name, Cmdline: cmdline(pid)})
	}

	return details
}
