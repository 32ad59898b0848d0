// Package classify implements the Classifier (SPEC_FULL.md §4.4): it turns
// each model.RunResult into at most one model.Vulnerability and folds a
// batch of results into a model.Summary.
package classify

import (
	"regexp"

	"github.com/joeycumines/escapesentry/internal/model"
)

// rule is one entry of the first-match-wins table. match inspects a
// RunResult and, if it applies, returns the vulnerability it describes.
// Ordering the table as a slice rather than a cascading if/else chain keeps
// the rule set itself the single source of truth for evaluation order.
type rule struct {
	vulnerabilityType string
	severity          model.Severity
	description       string
	match             func(model.RunResult) bool
}

var rules = []rule{
	{
		vulnerabilityType: "concurrency_escape",
		severity:          model.SeverityHigh,
		description:       "run left at least one non-daemon worker running after return",
		match: func(r model.RunResult) bool {
			return r.EscapeDetails.HasNonDaemonThread() ||
				len(r.EscapeDetails.Processes) > 0 ||
				len(r.EscapeDetails.AsyncTasks) > 0
		},
	},
	{
		vulnerabilityType: "daemon_thread_escape",
		severity:          model.SeverityLow,
		description:       "run left only daemon-flagged workers running after return",
		match: func(r model.RunResult) bool {
			return r.EscapeDetails.HasOnlyDaemonThreads()
		},
	},
	{
		vulnerabilityType: "timeout_with_escape",
		severity:          model.SeverityHigh,
		description:       "run exceeded its timeout and left workers behind",
		match: func(r model.RunResult) bool {
			return r.TimedOut && r.EscapeDetected
		},
	},
	{
		// timed_out ∧ ¬escape_detected emits no vulnerability; listed here
		// only so the table reads as a complete decision, per spec.
		vulnerabilityType: "",
		match: func(r model.RunResult) bool {
			return r.TimedOut && !r.EscapeDetected
		},
	},
	{
		vulnerabilityType: "crash",
		severity:          model.SeverityMedium,
		description:       "run crashed with a platform-level abort signature",
		match: func(r model.RunResult) bool {
			return r.Crashed && !r.TimedOut && isAbortSignature(r.Error)
		},
	},
}

// abortPatterns are the crash signatures that qualify a crash as a
// platform-abort rather than an ordinary returned error: a target can be
// native Go (panic:/fatal error:) or a bridged language reporting a signal
// name in its error text.
var abortPatterns = []*regexp.Regexp{
	regexp.MustCompile(`SIGSEGV`),
	regexp.MustCompile(`SIGABRT`),
	regexp.MustCompile(`^panic:`),
	regexp.MustCompile(`^fatal error:`),
}

func isAbortSignature(errMsg string) bool {
	for _, p := range abortPatterns {
		if p.MatchString(errMsg) {
			return true
		}
	}
	return false
}

// AnalyzeResult applies the rule table to run in order and returns the
// first matching Vulnerability, or nil when the first matching rule is the
// explicit no-vulnerability rule for plain timeouts, or when no rule
// matches at all (ordinary crashes and clean runs).
func AnalyzeResult(run model.RunResult) *model.Vulnerability {
	for _, r := range rules {
		if !r.match(run) {
			continue
		}
		if r.vulnerabilityType == "" {
			return nil
		}
		return &model.Vulnerability{
			Input:             run.Input,
			VulnerabilityType: r.vulnerabilityType,
			Severity:          r.severity,
			Description:       r.description,
			EscapeDetails:     run.EscapeDetails,
		}
	}
	return nil
}

// CategorizeResults folds runs into a Summary per spec.md §4.4's
// definitions.
func CategorizeResults(runs []model.RunResult) model.Summary {
	s := model.Summary{TotalTests: len(runs)}
	for _, r := range runs {
		switch {
		case r.TimedOut:
			s.Timeouts++
		case r.Crashed:
			s.Crashes++
		}
		if r.EscapeDetected {
			s.Escapes++
		}
		if r.EscapeDetails.Genuine() {
			s.GenuineEscapes++
		}
	}
	s.Successes = s.TotalTests - s.Crashes - s.Timeouts
	denom := s.TotalTests
	if denom < 1 {
		denom = 1
	}
	s.CrashRate = float64(s.Crashes+s.Timeouts) / float64(denom)
	return s
}
