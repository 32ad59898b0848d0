package isolate

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"time"

	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/procreg"
	"github.com/joeycumines/escapesentry/internal/procutil"
	"github.com/joeycumines/escapesentry/internal/snapshot"
)

// RunProcess spawns a clean re-exec of the current binary, feeds it ref and
// input on stdin, and waits up to timeout for a childResult on a dedicated
// result pipe. It never fork-inherits: exec.Command always starts a fresh
// image, giving every run the same deterministic baseline, per SPEC_FULL.md
// §4.2.
func RunProcess(ctx context.Context, exePath string, ref model.TargetRef, input string, timeout time.Duration) (Outcome, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return Outcome{}, &model.IsolationFailureError{Mode: string(ModeProcess), Cause: err}
	}

	cmd := exec.CommandContext(ctx, exePath)
	cmd.Env = append(os.Environ(), EnvMode+"="+ProbeChildMode)
	procutil.IsolateChild(cmd)
	cmd.ExtraFiles = []*os.File{pw}

	reqBytes, err := json.Marshal(childRequest{Target: ref.String(), Input: input})
	if err != nil {
		pr.Close()
		pw.Close()
		return Outcome{}, &model.IsolationFailureError{Mode: string(ModeProcess), Cause: err}
	}
	cmd.Stdin = bytes.NewReader(reqBytes)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return Outcome{}, &model.IsolationFailureError{Mode: string(ModeProcess), Cause: err}
	}
	// The parent's copy of the write end must be closed so EOF on pr is
	// observable once the child (the only remaining writer) exits.
	pw.Close()

	pid := cmd.Process.Pid
	procreg.Track(pid)
	defer procreg.Untrack(pid)

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	resultCh := make(chan childResult, 1)
	decodeErrCh := make(chan error, 1)
	go func() {
		var r childResult
		if err := json.NewDecoder(pr).Decode(&r); err != nil {
			decodeErrCh <- err
			return
		}
		resultCh <- r
	}()

	select {
	case r := <-resultCh:
		<-waitCh
		pr.Close()
		return Outcome{
			Output:     r.Output,
			ErrMsg:     r.Error,
			Crashed:    r.Crashed,
			Details:    r.EscapeDetails,
			HasDetails: true,
		}, nil

	case decodeErr := <-decodeErrCh:
		<-waitCh
		pr.Close()
		return Outcome{}, &model.IsolationFailureError{
			Mode:  string(ModeProcess),
			Cause: wrapWithStderr(decodeErr, stderr.String()),
		}

	case <-time.After(timeout):
		// Take the parent's own baseline over the child's process tree
		// before killing it: the child's in-process snapshots are about to
		// be lost, but this is how leaked grandchildren are still observed.
		descendants := snapshot.DescendantsOf(pid)
		_ = procutil.KillGroup(pid)
		<-waitCh
		pr.Close()

		var details model.EscapeDetails
		for _, d := range descendants {
			details.Processes = append(details.Processes, model.ProcessEscape{PID: d.PID, Name: d.Name})
		}
		return Outcome{TimedOut: true, Details: details, HasDetails: true}, nil
	}
}

func wrapWithStderr(err error, stderr string) error {
	if stderr == "" {
		return err
	}
	return &stderrWrappedError{cause: err, stderr: stderr}
}

type stderrWrappedError struct {
	cause  error
	stderr string
}

func (e *stderrWrappedError) Error() string {
	return e.cause.Error() + ": " + e.stderr
}

func (e *stderrWrappedError) Unwrap() error { return e.cause }
