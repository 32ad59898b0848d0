// Package harness implements the Harness (SPEC_FULL.md §4.3): it chooses an
// isolation mode for a target, drives one invocation through
// internal/isolate, and returns a model.RunResult with the escape diff
// already attached.
package harness

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joeycumines/escapesentry/internal/isolate"
	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/snapshot"
	"github.com/joeycumines/escapesentry/internal/target"
)

// Settle delays, per SPEC_FULL.md §4.1: 100ms in cooperative (in-process)
// modes, 500ms in isolated (process) mode. The process-mode value lives in
// internal/isolate, since that is where it is actually honored (inside the
// re-exec'd child); it is re-exported here so callers only need to import
// one package to see both defaults.
const (
	SettleDelayCooperative = 100 * time.Millisecond
	SettleDelayIsolated    = isolate.SettleDelayIsolated
)

// Config selects overrides for a Harness; the zero Config uses every
// spec-mandated default.
type Config struct {
	// Mode, if non-empty, overrides both the target's declared requirement
	// and the Harness's own default selection.
	Mode isolate.Mode

	// SettleDelay, if non-zero, overrides the cooperative-mode settle delay
	// (SettleDelayCooperative). It never affects process mode, whose delay
	// is enforced inside the re-exec'd child.
	SettleDelay time.Duration

	// ExecutablePath overrides the path re-exec'd in process mode; defaults
	// to os.Executable().
	ExecutablePath string
}

// Harness runs one target invocation per call to RunTest.
type Harness struct {
	cfg Config
}

// New constructs a Harness from cfg.
func New(cfg Config) *Harness {
	return &Harness{cfg: cfg}
}

// RunTest selects an isolation mode, invokes ref with input, and returns a
// fully-populated model.RunResult. ctx is never passed into the target's
// own call. Inline and worker-thread mode do not consult it; in process
// mode it is handed to exec.CommandContext, so cancelling it kills the
// child, and the run is then recorded as a crashed isolation failure, not
// as a timeout.
func (h *Harness) RunTest(ctx context.Context, desc target.Descriptor, ref model.TargetRef, input string, timeout time.Duration) (model.RunResult, error) {
	mode := h.selectMode(desc)

	start := time.Now()
	var (
		out isolate.Outcome
		err error
	)

	switch mode {
	case isolate.ModeProcess:
		exe := h.cfg.ExecutablePath
		if exe == "" {
			exe, err = os.Executable()
		}
		if err == nil {
			out, err = isolate.RunProcess(ctx, exe, ref, input, timeout)
		}
		if err != nil {
			// Per SPEC_FULL.md §7, no error from the target or its isolation
			// mode may terminate the session: it is recorded as a crashed
			// run and handed back to the caller like any other outcome.
			isoErr := &model.IsolationFailureError{Mode: string(mode), Cause: err}
			elapsed := time.Since(start)
			return model.NewRunResult(input, true, false, "", isoErr.Error(), elapsed.Milliseconds(), model.EscapeDetails{}), nil
		}

	case isolate.ModeWorkerThread:
		pre := snapshot.Snapshot()
		out = isolate.RunWorkerThread(desc.Fn, input, timeout)
		time.Sleep(h.settleDelay())
		post := snapshot.Snapshot()
		out.Details = snapshot.Diff(pre, post)
		out.HasDetails = true

	default: // ModeInline
		pre := snapshot.Snapshot()
		out = isolate.RunInline(desc.Fn, input, timeout)
		time.Sleep(h.settleDelay())
		post := snapshot.Snapshot()
		out.Details = snapshot.Diff(pre, post)
		out.HasDetails = true
	}

	elapsed := time.Since(start)

	// A timeout is always reported as a crash, regardless of which mode
	// produced it, and always carries a message containing "timeout" —
	// Testable Property 6 and end-to-end scenario S4.
	if out.TimedOut {
		out.Crashed = true
		if out.ErrMsg == "" {
			out.ErrMsg = fmt.Sprintf("TimeoutError: execution exceeded %s timeout", timeout)
		}
	}

	result := model.NewRunResult(input, out.Crashed, out.TimedOut, out.Output, out.ErrMsg, elapsed.Milliseconds(), out.Details)
	return result, nil
}

// selectMode implements SPEC_FULL.md §4.3's selection order: (1) an
// explicit Config.Mode override, (2) the target's own declared requirement,
// (3) the default (process if process-safe, else worker-thread). It also
// implements the pre-flight fallback: a process-mode selection against a
// target that is not process-safe transparently downgrades to
// worker-thread rather than failing.
func (h *Harness) selectMode(desc target.Descriptor) isolate.Mode {
	mode := h.cfg.Mode
	if mode == "" && desc.RequiredMode != "" {
		mode = isolate.Mode(desc.RequiredMode)
	}
	if mode == "" {
		if desc.ProcessSafe {
			mode = isolate.ModeProcess
		} else {
			mode = isolate.ModeWorkerThread
		}
	}
	if mode == isolate.ModeProcess && !desc.ProcessSafe {
		mode = isolate.ModeWorkerThread
	}
	return mode
}

func (h *Harness) settleDelay() time.Duration {
	if h.cfg.SettleDelay > 0 {
		return h.cfg.SettleDelay
	}
	return SettleDelayCooperative
}
