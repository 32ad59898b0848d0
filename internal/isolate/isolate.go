// Package isolate implements the Isolation Runner (SPEC_FULL.md §4.2): the
// three modes (process, worker-thread, inline) a Harness can invoke a
// target under, each enforcing timeout.Duration and capturing crash
// output without ever letting the target unwind past this package.
package isolate

import (
	"fmt"

	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/target"
)

// Mode is one of the three isolation containers a target can run under.
type Mode string

const (
	ModeProcess      Mode = "process"
	ModeWorkerThread Mode = "worker-thread"
	ModeInline       Mode = "inline"
)

// EnvMode is the environment variable cmd/escapesentry inspects at startup
// to decide whether it is the outer CLI process or a re-exec'd probe child.
const EnvMode = "ESCAPESENTRY_MODE"

// ProbeChildMode is the EnvMode value set on a re-exec'd process-mode child.
const ProbeChildMode = "probe-child"

// Outcome is the raw result of invoking a target under some isolation mode,
// before the Harness stamps execution time and resolves RunResult's
// success invariant.
type Outcome struct {
	Output   string
	ErrMsg   string
	Crashed  bool
	TimedOut bool

	// Details and HasDetails: worker-thread and inline mode run in the
	// caller's own process, so the Harness computes the escape diff itself
	// from its own pre/post snapshots. Process mode computes the diff
	// in-process (inside the child, or from the parent's own baseline on a
	// timeout) and returns it already populated, per SPEC_FULL.md §4.2.
	Details    model.EscapeDetails
	HasDetails bool
}

// invoke calls fn, converting any panic into an error the same way a
// crashed target's exception would be rendered, so the target can never
// unwind past this package.
func invoke(fn target.Func, input string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(input)
}
