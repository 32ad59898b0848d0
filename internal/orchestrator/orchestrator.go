// Package orchestrator implements the Session Orchestrator (SPEC_FULL.md
// §4.6): it drives one AnalysisRequest against a native Go target end to
// end — harness runs, streaming classification, an optional static pass —
// and hands the accumulated state to internal/report for emission.
package orchestrator

import (
	"context"

	"github.com/joeycumines/escapesentry/internal/classify"
	"github.com/joeycumines/escapesentry/internal/harness"
	"github.com/joeycumines/escapesentry/internal/logx"
	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/staticanalysis"
	"github.com/joeycumines/escapesentry/internal/target"
)

// SourceLookup resolves a TargetRef to the source text the static analyzer
// should scan; only consulted when the request's analysis mode requires a
// static pass. A locator that is itself a filesystem path is the common
// case and is handled by DefaultSourceLookup.
type SourceLookup func(ref model.TargetRef) (filename, src string, err error)

// Orchestrator runs AnalysisRequests against the native Go target registry.
type Orchestrator struct {
	harness *harness.Harness
	lookup  SourceLookup
	log     *logx.Logger
}

// New constructs an Orchestrator. log defaults to logx.Default() if nil.
func New(h *harness.Harness, lookup SourceLookup, log *logx.Logger) *Orchestrator {
	if log == nil {
		log = logx.Default()
	}
	return &Orchestrator{harness: h, lookup: lookup, log: log}
}

// Run executes req and returns the assembled SessionReport. It never
// returns a Go error for a per-run failure — those are folded into the
// report's Results/Vulnerabilities — but does return one for a fatal,
// session-wide failure (the target itself could not be resolved).
func (o *Orchestrator) Run(ctx context.Context, req model.AnalysisRequest) (model.SessionReport, error) {
	if err := req.Validate(); err != nil {
		return model.SessionReport{}, err
	}

	ref, err := model.ParseTargetRef(req.Target)
	if err != nil {
		return model.SessionReport{}, err
	}

	desc, err := target.Load(ref)
	if err != nil {
		return model.SessionReport{}, err
	}

	log := o.log.With("session_id", req.SessionID, "target", ref.String())

	report := model.SessionReport{
		SessionID:       req.SessionID,
		Language:        "go",
		AnalyzerVersion: model.AnalyzerVersion,
		AnalysisMode:    req.AnalysisMode,
		Results:         make([]model.RunResult, 0, len(req.Inputs)*req.Repeat),
		Vulnerabilities: []model.Vulnerability{},
	}

	if req.AnalysisMode != model.AnalysisModeStatic {
		log.Info("dynamic analysis starting", "inputs", len(req.Inputs), "repeat", req.Repeat)
		for inputIdx, input := range req.Inputs {
			for repeatIdx := 0; repeatIdx < req.Repeat; repeatIdx++ {
				select {
				case <-ctx.Done():
					return model.SessionReport{}, ctx.Err()
				default:
				}

				// Per SPEC_FULL.md §7, no error from a single run or its
				// isolation mode may terminate the session — harness.RunTest
				// already folds those into a crashed RunResult, so a non-nil
				// err here can only mean a session-fatal condition that was
				// not a per-run failure; log it and move on rather than
				// discarding every result already collected.
				result, err := o.harness.RunTest(ctx, desc, ref, input, req.Timeout())
				if err != nil {
					log.Error("run failed outside isolation", "input_index", inputIdx, "repeat_index", repeatIdx, "error", err.Error())
					result = model.NewRunResult(input, true, false, "", err.Error(), 0, model.EscapeDetails{})
				}
				result = result.WithOrder(inputIdx, repeatIdx)

				// Classified as each result is produced, not in a second
				// pass over the finished Results slice.
				if v := classify.AnalyzeResult(result); v != nil {
					report.Vulnerabilities = append(report.Vulnerabilities, *v)
				}
				report.Results = append(report.Results, result)
			}
		}
	}
	report.Summary = classify.CategorizeResults(report.Results)

	if req.AnalysisMode == model.AnalysisModeStatic || req.AnalysisMode == model.AnalysisModeBoth {
		findings, err := o.runStaticPass(ref)
		if err != nil {
			return model.SessionReport{}, err
		}
		report.StaticFindings = findings
	}

	log.Info("session complete", "total_tests", report.Summary.TotalTests, "vulnerabilities", len(report.Vulnerabilities))
	return report, nil
}

func (o *Orchestrator) runStaticPass(ref model.TargetRef) ([]model.EscapeFinding, error) {
	filename, src, err := o.lookup(ref)
	if err != nil {
		return nil, err
	}
	return staticanalysis.Analyze(filename, src, ref.Symbol)
}
