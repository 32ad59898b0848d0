// Package procreg is the runtime's own child-process registry: the first of
// the two sources the Snapshot Probe combines when enumerating child
// processes (SPEC_FULL.md §4.1). internal/isolate records every PID it
// spawns here; internal/snapshot reads it back. It is a separate package,
// rather than living in internal/isolate or internal/snapshot directly, so
// neither has to import the other to share it.
package procreg

import "sync"

var (
	mu  sync.Mutex
	set = map[int]bool{}
)

// Track records pid as a child process the isolation runner spawned.
func Track(pid int) {
	mu.Lock()
	defer mu.Unlock()
	set[pid] = true
}

// Untrack removes pid once it has been reaped.
func Untrack(pid int) {
	mu.Lock()
	defer mu.Unlock()
	delete(set, pid)
}

// Live returns a snapshot copy of every currently-tracked PID.
func Live() map[int]bool {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[int]bool, len(set))
	for pid := range set {
		out[pid] = true
	}
	return out
}
