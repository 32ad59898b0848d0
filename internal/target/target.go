// Package target implements the native-Go half of the language dispatcher:
// a build-time registry of callable functions (the "statically compiled
// dispatch table" of SPEC_FULL.md §4.7/Design Notes §9), the worker
// bookkeeping those functions use to report the goroutines and child
// processes they spawn, and the TargetRef loader that resolves a
// "<locator>:<symbol>" reference against that registry.
package target

import (
	"sync"

	"github.com/joeycumines/escapesentry/internal/model"
)

// Func is the signature every registered target must satisfy: it receives
// the raw input bytes and returns a human-readable output string plus an
// error. A non-nil error is recorded as a crash.
type Func func(input string) (string, error)

// Descriptor carries the properties the Harness needs to pick an isolation
// mode without inspecting the function itself.
type Descriptor struct {
	Fn Func

	// ProcessSafe reports whether Fn can be safely invoked by a re-exec'd
	// copy of the binary, i.e. it depends on no in-process state other than
	// its input. Closures over test-local state should register with
	// ProcessSafe=false so the Harness falls back to worker-thread mode.
	ProcessSafe bool

	// RequiredMode, if non-empty, forces a specific isolation mode
	// regardless of the Harness's own default selection.
	RequiredMode string
}

var (
	mu       sync.RWMutex
	registry = map[string]Descriptor{}
)

// Register adds a target function under locator:symbol, to be resolved
// later by Load. Intended to be called from an init() function in the
// package that owns the target, the Go analogue of the Python loader's
// dynamic import-by-path.
func Register(locator, symbol string, d Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	registry[locator+":"+symbol] = d
}

// Load resolves a TargetRef against the registry.
func Load(ref model.TargetRef) (Descriptor, error) {
	mu.RLock()
	d, ok := registry[ref.String()]
	mu.RUnlock()
	if !ok {
		return Descriptor{}, &model.TargetNotFoundError{Target: ref}
	}
	if d.Fn == nil {
		return Descriptor{}, &model.TargetNotCallableError{Target: ref, Reason: "registered descriptor has a nil function"}
	}
	return d, nil
}
