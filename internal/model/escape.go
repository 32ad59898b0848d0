package model

// ThreadEscape describes a thread-equivalent worker observed live at the
// post-snapshot that was absent at the pre-snapshot.
type ThreadEscape struct {
	ThreadID   string `json:"thread_id"`
	Name       string `json:"name"`
	IsDaemon   bool   `json:"is_daemon"`
	State      string `json:"state"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// ProcessEscape describes a child process observed still running at the
// post-snapshot that was not present in the pre-snapshot child-pid set.
type ProcessEscape struct {
	PID     int    `json:"pid"`
	Name    string `json:"name"`
	Cmdline string `json:"cmdline,omitempty"`
}

// AsyncTaskEscape describes a pending task on an observable event loop that
// was not observable pre-snapshot.
type AsyncTaskEscape struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// OtherEscape is a catch-all for language-specific workers that don't map
// cleanly onto threads, processes, or async tasks.
type OtherEscape struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// EscapeDetails is the diff between a pre- and post-invocation snapshot:
// every worker present at post that was absent at pre. Membership is always
// by identity, never by name — a worker present in both snapshots is never
// reported here, regardless of whether its name or state changed between
// the two observations.
type EscapeDetails struct {
	Threads    []ThreadEscape    `json:"threads"`
	Processes  []ProcessEscape   `json:"processes"`
	AsyncTasks []AsyncTaskEscape `json:"async_tasks"`
	Goroutines []ThreadEscape    `json:"goroutines,omitempty"`
	Other      []OtherEscape     `json:"other,omitempty"`
}

// Empty reports whether the diff contains no escaped workers of any kind.
func (d EscapeDetails) Empty() bool {
	return len(d.Threads) == 0 && len(d.Processes) == 0 && len(d.AsyncTasks) == 0 &&
		len(d.Goroutines) == 0 && len(d.Other) == 0
}

// HasNonDaemonThread reports whether the diff contains at least one
// non-daemon thread-equivalent worker (spanning both Threads and
// Goroutines, Go's own thread-equivalent bucket).
func (d EscapeDetails) HasNonDaemonThread() bool {
	for _, t := range d.Threads {
		if !t.IsDaemon {
			return true
		}
	}
	for _, t := range d.Goroutines {
		if !t.IsDaemon {
			return true
		}
	}
	return false
}

// HasOnlyDaemonThreads reports whether the diff is non-empty, contains no
// processes or async tasks, and every thread-equivalent worker it contains
// is a daemon.
func (d EscapeDetails) HasOnlyDaemonThreads() bool {
	if d.Empty() || len(d.Processes) > 0 || len(d.AsyncTasks) > 0 || len(d.Other) > 0 {
		return false
	}
	return !d.HasNonDaemonThread()
}

// Genuine reports whether the diff contains at least one non-daemon worker
// of any kind: a non-daemon thread/goroutine, any process, or any async
// task. Daemon-only thread escapes and the empty diff are not genuine.
func (d EscapeDetails) Genuine() bool {
	if len(d.Processes) > 0 || len(d.AsyncTasks) > 0 {
		return true
	}
	return d.HasNonDaemonThread()
}
