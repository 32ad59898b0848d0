package classify

import (
	"testing"

	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeResult_concurrencyEscape(t *testing.T) {
	run := model.NewRunResult("in", false, false, "out", "", 1, model.EscapeDetails{
		Threads: []model.ThreadEscape{{ThreadID: "1", IsDaemon: false}},
	})

	v := AnalyzeResult(run)
	require.NotNil(t, v)
	require.Equal(t, "concurrency_escape", v.VulnerabilityType)
	require.Equal(t, model.SeverityHigh, v.Severity)
}

func TestAnalyzeResult_daemonOnly(t *testing.T) {
	run := model.NewRunResult("in", false, false, "out", "", 1, model.EscapeDetails{
		Threads: []model.ThreadEscape{{ThreadID: "1", IsDaemon: true}},
	})

	v := AnalyzeResult(run)
	require.NotNil(t, v)
	require.Equal(t, "daemon_thread_escape", v.VulnerabilityType)
	require.Equal(t, model.SeverityLow, v.Severity)
}

func TestAnalyzeResult_plainTimeoutNoVulnerability(t *testing.T) {
	run := model.NewRunResult("in", true, true, "", "TimeoutError: x", 1, model.EscapeDetails{})
	require.Nil(t, AnalyzeResult(run))
}

func TestAnalyzeResult_crashWithAbortSignature(t *testing.T) {
	run := model.NewRunResult("in", true, false, "", "fatal error: all goroutines are asleep", 1, model.EscapeDetails{})
	v := AnalyzeResult(run)
	require.NotNil(t, v)
	require.Equal(t, "crash", v.VulnerabilityType)
	require.Equal(t, model.SeverityMedium, v.Severity)
}

func TestAnalyzeResult_ordinaryCrashNoVulnerability(t *testing.T) {
	run := model.NewRunResult("in", true, false, "", "ValueError: bad input", 1, model.EscapeDetails{})
	require.Nil(t, AnalyzeResult(run))
}

func TestAnalyzeResult_successNoVulnerability(t *testing.T) {
	run := model.NewRunResult("in", false, false, "out", "", 1, model.EscapeDetails{})
	require.Nil(t, AnalyzeResult(run))
}

func TestCategorizeResults(t *testing.T) {
	runs := []model.RunResult{
		model.NewRunResult("a", false, false, "ok", "", 1, model.EscapeDetails{}),
		model.NewRunResult("b", true, false, "", "ValueError: boom", 1, model.EscapeDetails{}),
		model.NewRunResult("c", true, true, "", "TimeoutError: x", 1, model.EscapeDetails{}),
		model.NewRunResult("d", false, false, "", "", 1, model.EscapeDetails{
			Threads: []model.ThreadEscape{{ThreadID: "1", IsDaemon: false}},
		}),
		model.NewRunResult("e", false, false, "", "", 1, model.EscapeDetails{
			Threads: []model.ThreadEscape{{ThreadID: "2", IsDaemon: true}},
		}),
	}

	summary := CategorizeResults(runs)
	require.Equal(t, 5, summary.TotalTests)
	require.Equal(t, 1, summary.Crashes)
	require.Equal(t, 1, summary.Timeouts)
	require.Equal(t, 3, summary.Successes)
	require.Equal(t, 2, summary.Escapes)
	require.Equal(t, 1, summary.GenuineEscapes)
	require.InDelta(t, 2.0/5.0, summary.CrashRate, 0.0001)
}

func TestCategorizeResults_emptyAvoidsDivideByZero(t *testing.T) {
	summary := CategorizeResults(nil)
	require.Equal(t, 0, summary.TotalTests)
	require.Equal(t, 0.0, summary.CrashRate)
}
