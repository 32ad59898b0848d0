package isolate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/snapshot"
	"github.com/joeycumines/escapesentry/internal/target"
)

// SettleDelayIsolated is the settle delay a probe child honors between the
// target returning and its own post-snapshot, per SPEC_FULL.md §4.1: 500ms
// in isolated (process) modes, longer than the cooperative default because
// a freshly-spawned grandchild takes longer to become observable across a
// process boundary than within one.
const SettleDelayIsolated = 500 * time.Millisecond

// resultFD is the file descriptor, beyond stdin/stdout/stderr, a probe
// child writes its JSON result to. RunProcess attaches it via
// exec.Cmd.ExtraFiles[0].
const resultFD = 3

// RunProbeChild is the entrypoint cmd/escapesentry delegates to when it
// finds EnvMode=ProbeChildMode in its own environment: read the request
// from stdin, resolve and invoke the target, take the before/after
// snapshot pair inside this very process, and report the result on the fd
// RunProcess is waiting to read. It returns the process exit code.
func RunProbeChild(stdin io.Reader) int {
	resultPipe := os.NewFile(resultFD, "escapesentry-result")
	if resultPipe == nil {
		fmt.Fprintln(os.Stderr, "escapesentry: probe child missing result pipe fd 3")
		return 1
	}
	defer resultPipe.Close()

	var req childRequest
	if err := json.NewDecoder(stdin).Decode(&req); err != nil {
		writeChildResult(resultPipe, childResult{Error: fmt.Sprintf("malformed probe-child request: %v", err), Crashed: true})
		return 1
	}

	ref, err := model.ParseTargetRef(req.Target)
	if err != nil {
		writeChildResult(resultPipe, childResult{Error: err.Error(), Crashed: true})
		return 1
	}

	desc, err := target.Load(ref)
	if err != nil {
		writeChildResult(resultPipe, childResult{Error: err.Error(), Crashed: true})
		return 1
	}

	pre := snapshot.Snapshot()
	output, invokeErr := invoke(desc.Fn, req.Input)
	time.Sleep(SettleDelayIsolated)
	post := snapshot.Snapshot()
	details := snapshot.Diff(pre, post)

	result := childResult{
		Output:         output,
		EscapeDetected: !details.Empty(),
		EscapeDetails:  details,
	}
	if invokeErr != nil {
		result.Crashed = true
		result.Error = invokeErr.Error()
	}

	writeChildResult(resultPipe, result)
	return 0
}

func writeChildResult(w io.Writer, r childResult) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(r)
}
