package model

import "fmt"

// TargetNotFoundError means a locator resolved to no source/module, or the
// named symbol is missing from it. Fatal for the session.
type TargetNotFoundError struct {
	Target TargetRef
	Cause  error
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("target not found: %s", e.Target)
}

func (e *TargetNotFoundError) Unwrap() error { return e.Cause }

// TargetNotCallableError means the symbol exists but cannot be invoked
// (wrong arity, wrong kind, unexported from its declared loader). Fatal.
type TargetNotCallableError struct {
	Target TargetRef
	Reason string
}

func (e *TargetNotCallableError) Error() string {
	return fmt.Sprintf("target not callable: %s: %s", e.Target, e.Reason)
}

// MalformedRequestError means the analysis request itself could not be
// understood. Fatal, before any result is collected.
type MalformedRequestError struct {
	Field  string
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: field %q: %s", e.Field, e.Reason)
}

// IsolationFailureError means the isolation container (child process or
// worker-thread) died, or its result channel closed, without producing a
// result. Per-run: recorded as crashed=true, timed_out=false, the session
// continues.
type IsolationFailureError struct {
	Mode  string
	Cause error
}

func (e *IsolationFailureError) Error() string {
	return fmt.Sprintf("isolation failure (%s mode): %v", e.Mode, e.Cause)
}

func (e *IsolationFailureError) Unwrap() error { return e.Cause }

// ParseFailureError means the static analyzer could not parse the target
// source. Returned as the error of staticanalysis.Analyze; the analyze
// subcommand prints it to stderr and exits 1 without writing a JSON object
// to stdout. The dynamic path, if also requested, is unaffected.
type ParseFailureError struct {
	Path  string
	Cause error
}

func (e *ParseFailureError) Error() string {
	return fmt.Sprintf("parse failure: %s: %v", e.Path, e.Cause)
}

func (e *ParseFailureError) Unwrap() error { return e.Cause }

// BridgeFailureError means a cross-language bridge process failed to start,
// exited non-zero, or returned output that did not parse as a SessionReport.
// Surfaces as the top-level error field on the report.
type BridgeFailureError struct {
	Language string
	Cause    error
}

func (e *BridgeFailureError) Error() string {
	return fmt.Sprintf("bridge failure (%s): %v", e.Language, e.Cause)
}

func (e *BridgeFailureError) Unwrap() error { return e.Cause }
