package model

import "time"

// AnalysisRequest is the §6 wire request, read from stdin by cmd/escapesentry
// or constructed directly by callers embedding the orchestrator.
type AnalysisRequest struct {
	SessionID      string       `json:"session_id"`
	Target         string       `json:"target"`
	Inputs         []string     `json:"inputs"`
	Repeat         int          `json:"repeat"`
	TimeoutSeconds float64      `json:"timeout_seconds"`
	AnalysisMode   AnalysisMode `json:"analysis_mode"`
	Language       string       `json:"language,omitempty"`
}

// Timeout converts TimeoutSeconds to a time.Duration.
func (r AnalysisRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds * float64(time.Second))
}

// Validate checks the structural invariants spec.md §6 requires of a
// request, independent of whether the target itself can be resolved.
func (r AnalysisRequest) Validate() error {
	switch {
	case r.SessionID == "":
		return &MalformedRequestError{Field: "session_id", Reason: "must not be empty"}
	case r.Target == "":
		return &MalformedRequestError{Field: "target", Reason: "must not be empty"}
	case r.Repeat <= 0:
		return &MalformedRequestError{Field: "repeat", Reason: "must be > 0"}
	case r.TimeoutSeconds <= 0:
		return &MalformedRequestError{Field: "timeout_seconds", Reason: "must be > 0"}
	case r.AnalysisMode != AnalysisModeDynamic && r.AnalysisMode != AnalysisModeStatic && r.AnalysisMode != AnalysisModeBoth:
		return &MalformedRequestError{Field: "analysis_mode", Reason: "must be one of dynamic, static, both"}
	}
	return nil
}

// ErrorReport builds the fatal-failure report shape of spec.md §6: empty
// results/vulnerabilities, crash_rate forced to 1.0, and the top-level error
// string set.
func ErrorReport(sessionID, language string, mode AnalysisMode, err error) SessionReport {
	return SessionReport{
		SessionID:       sessionID,
		Language:        language,
		AnalyzerVersion: AnalyzerVersion,
		AnalysisMode:    mode,
		Results:         []RunResult{},
		Vulnerabilities: []Vulnerability{},
		Summary:         Summary{CrashRate: 1.0},
		Error:           err.Error(),
	}
}

// AnalyzerVersion is the version string stamped onto every SessionReport.
const AnalyzerVersion = "1.0.0"
