package target

import (
	"sync"
	"sync/atomic"
)

// Worker is a live entry in the process-wide worker registry: one per
// goroutine spawned via Spawn or SpawnDaemon, for as long as it runs.
type Worker struct {
	ID     uint64
	Name   string
	Daemon bool
}

var (
	nextWorkerID uint64
	workers      sync.Map // uint64 -> *Worker
)

// Spawn starts fn on a new goroutine and registers it as a non-daemon
// worker for the duration of its run. This is the only sanctioned way a
// registered target should start background work: it is what makes that
// work visible to the Snapshot Probe.
func Spawn(name string, fn func()) *Worker {
	return spawn(name, false, fn)
}

// SpawnDaemon is Spawn, but registers the worker as a daemon: one whose
// continued presence after the target returns is still an escape, but is
// never a "genuine" one on its own.
func SpawnDaemon(name string, fn func()) *Worker {
	return spawn(name, true, fn)
}

func spawn(name string, daemon bool, fn func()) *Worker {
	w := &Worker{
		ID:     atomic.AddUint64(&nextWorkerID, 1),
		Name:   name,
		Daemon: daemon,
	}
	workers.Store(w.ID, w)
	go func() {
		defer workers.Delete(w.ID)
		fn()
	}()
	return w
}

// LiveWorkers returns a snapshot copy of every currently-registered worker.
func LiveWorkers() []Worker {
	var out []Worker
	workers.Range(func(_, v any) bool {
		out = append(out, *v.(*Worker))
		return true
	})
	return out
}
