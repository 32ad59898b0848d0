// Command escapesentry runs the dynamic and static concurrency-escape
// analyzer described by SPEC_FULL.md. Invoked with no arguments it reads an
// AnalysisRequest (§6) from stdin and writes a SessionReport to stdout;
// invoked as `escapesentry analyze <file> <function>` it runs the static
// analyzer alone. A third, internal mode is driven entirely by environment
// variable: a re-exec'd process-isolation child never parses argv at all.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joeycumines/escapesentry/internal/dispatch"
	"github.com/joeycumines/escapesentry/internal/dispatch/bridge"
	"github.com/joeycumines/escapesentry/internal/harness"
	"github.com/joeycumines/escapesentry/internal/isolate"
	"github.com/joeycumines/escapesentry/internal/logx"
	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/orchestrator"
	"github.com/joeycumines/escapesentry/internal/report"
	"github.com/joeycumines/escapesentry/internal/staticanalysis"

	_ "github.com/joeycumines/escapesentry/examples/targets"
)

func main() {
	if os.Getenv(isolate.EnvMode) == isolate.ProbeChildMode {
		os.Exit(isolate.RunProbeChild(os.Stdin))
	}

	if len(os.Args) >= 2 && os.Args[1] == "analyze" {
		os.Exit(runAnalyzeSubcommand(os.Args[2:]))
	}

	os.Exit(runAnalysisRequest())
}

func runAnalyzeSubcommand(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: escapesentry analyze <file> <function>")
		return 2
	}
	file, function := args[0], args[1]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "escapesentry: %v\n", err)
		return 1
	}

	findings, err := staticanalysis.Analyze(file, string(src), function)
	if err != nil {
		fmt.Fprintf(os.Stderr, "escapesentry: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		fmt.Fprintf(os.Stderr, "escapesentry: %v\n", err)
		return 1
	}
	return 0
}

func runAnalysisRequest() int {
	log := logx.Default()

	var req model.AnalysisRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		_ = report.WriteFatal(os.Stderr, "", "", model.AnalysisModeDynamic, &model.MalformedRequestError{Field: "body", Reason: err.Error()})
		return 1
	}
	if req.Language == "" {
		req.Language = "go"
	}

	ctx := context.Background()
	sessionReport, err := dispatchRequest(ctx, req, log)
	if err != nil {
		log.Error("session failed", "session_id", req.SessionID, "error", err.Error())
		_ = report.WriteFatal(os.Stderr, req.SessionID, req.Language, req.AnalysisMode, err)
		return 1
	}

	if err := report.Write(os.Stdout, sessionReport); err != nil {
		fmt.Fprintf(os.Stderr, "escapesentry: %v\n", err)
		return 1
	}
	return 0
}

func dispatchRequest(ctx context.Context, req model.AnalysisRequest, log *logx.Logger) (model.SessionReport, error) {
	// entry.Loader and entry.StaticAnalyzer name the same target.Load and
	// staticanalysis.Analyze the orchestrator already calls directly; this
	// lookup exists to decide native-vs-bridge, not to redirect the call.
	_, bridgeCfg, isNative, isBridged := dispatch.Resolve(req.Language)
	switch {
	case isNative:
		h := harness.New(harness.Config{})
		o := orchestrator.New(h, orchestrator.DefaultSourceLookup, log)
		return o.Run(ctx, req)

	case isBridged:
		return bridge.Run(ctx, bridgeCfg, req)

	default:
		return model.SessionReport{}, &model.BridgeFailureError{Language: req.Language, Cause: fmt.Errorf("no loader or bridge registered for language %q", req.Language)}
	}
}
