// Package bridge provides out-of-process language bridge adapters for the
// Language Dispatcher: each adapter marshals an AnalysisRequest to a
// subprocess's stdin and parses its stdout verbatim as a SessionReport, per
// SPEC_FULL.md §4.7.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"

	"github.com/joeycumines/escapesentry/internal/dispatch"
	"github.com/joeycumines/escapesentry/internal/model"
)

// Python is the reference bridge registration, grounded in
// analyzer_bridge.py: a standalone script that reads one JSON request
// object from stdin and writes one JSON SessionReport to stdout.
var Python = dispatch.BridgeConfig{
	Command: "python3",
	Args:    []string{"-m", "analyzer_bridge"},
}

func init() {
	dispatch.RegisterBridge("python", Python)
}

// Run executes cfg against req and parses its stdout as a SessionReport.
// The core never re-validates or re-analyzes a foreign report beyond
// confirming it parses — per spec.md §4.7, "the core does not re-analyze
// foreign results".
func Run(ctx context.Context, cfg dispatch.BridgeConfig, req model.AnalysisRequest) (model.SessionReport, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return model.SessionReport{}, &model.BridgeFailureError{Language: req.Language, Cause: err}
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return model.SessionReport{}, &model.BridgeFailureError{
			Language: req.Language,
			Cause:    wrapStderr(err, stderr.String()),
		}
	}

	var report model.SessionReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		return model.SessionReport{}, &model.BridgeFailureError{
			Language: req.Language,
			Cause:    wrapStderr(err, stderr.String()),
		}
	}
	return report, nil
}

func wrapStderr(err error, stderr string) error {
	if stderr == "" {
		return err
	}
	return &stderrWrappedError{cause: err, stderr: stderr}
}

type stderrWrappedError struct {
	cause  error
	stderr string
}

func (e *stderrWrappedError) Error() string { return e.cause.Error() + ": " + e.stderr }
func (e *stderrWrappedError) Unwrap() error { return e.cause }
