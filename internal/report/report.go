// Package report is the sole writer of the §6 SessionReport wire shape: it
// encodes that report with the standard library's encoding/json (see
// DESIGN.md for why this boundary stays on the standard library rather
// than a third-party codec) and the success/failure exit conventions of
// cmd/escapesentry.
package report

import (
	"encoding/json"
	"io"

	"github.com/joeycumines/escapesentry/internal/model"
)

// Write pretty-prints report to w as the §6 JSON shape.
func Write(w io.Writer, report model.SessionReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteFatal builds the spec.md §6 fatal-failure shape — empty
// results/vulnerabilities, crash_rate forced to 1.0, a top-level error
// string — and writes it to w.
func WriteFatal(w io.Writer, sessionID, language string, mode model.AnalysisMode, cause error) error {
	return Write(w, model.ErrorReport(sessionID, language, mode, cause))
}

// Marshal renders report as indented JSON, for callers (tests, bridge
// adapters) that want the bytes rather than a Write side effect.
func Marshal(report model.SessionReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
