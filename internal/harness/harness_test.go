package harness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/escapesentry/internal/isolate"
	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/target"
	"github.com/stretchr/testify/require"
)

var testRef = model.TargetRef{Locator: "harness_test.go", Symbol: "fixture"}

func cooperativeDescriptor(fn target.Func) target.Descriptor {
	return target.Descriptor{Fn: fn, ProcessSafe: false}
}

// S1 — leaked non-daemon thread.
func TestHarness_S1_leakedNonDaemonWorker(t *testing.T) {
	h := New(Config{SettleDelay: 10 * time.Millisecond})
	desc := cooperativeDescriptor(func(string) (string, error) {
		target.Spawn("leaky", func() { time.Sleep(2 * time.Second) })
		return "", nil
	})

	result, err := h.RunTest(context.Background(), desc, testRef, "", 5*time.Second)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.True(t, result.EscapeDetected)
	require.Len(t, result.EscapeDetails.Goroutines, 1)
	require.False(t, result.EscapeDetails.Goroutines[0].IsDaemon)

	summary := summaryOf(t, result)
	require.Equal(t, 1, summary.TotalTests)
	require.Equal(t, 1, summary.Escapes)
	require.Equal(t, 1, summary.GenuineEscapes)
	require.Equal(t, 0, summary.Crashes)
	require.Equal(t, 0, summary.Timeouts)
}

// S2 — properly joined worker.
func TestHarness_S2_joinedWorker(t *testing.T) {
	h := New(Config{SettleDelay: 10 * time.Millisecond})
	desc := cooperativeDescriptor(func(string) (string, error) {
		var wg sync.WaitGroup
		wg.Add(1)
		target.Spawn("joined", func() {
			defer wg.Done()
		})
		wg.Wait()
		return "", nil
	})

	result, err := h.RunTest(context.Background(), desc, testRef, "", 5*time.Second)
	require.NoError(t, err)
	require.False(t, result.EscapeDetected)
}

// S3 — daemon-only escape.
func TestHarness_S3_daemonOnly(t *testing.T) {
	h := New(Config{SettleDelay: 10 * time.Millisecond})
	release := make(chan struct{})
	desc := cooperativeDescriptor(func(string) (string, error) {
		target.SpawnDaemon("daemon", func() { <-release })
		return "", nil
	})

	result, err := h.RunTest(context.Background(), desc, testRef, "", 5*time.Second)
	require.NoError(t, err)
	require.True(t, result.EscapeDetected)
	require.Len(t, result.EscapeDetails.Goroutines, 1)
	require.True(t, result.EscapeDetails.Goroutines[0].IsDaemon)
	require.False(t, result.EscapeDetails.Genuine())
	close(release)
}

// S4 — timeout.
func TestHarness_S4_timeout(t *testing.T) {
	h := New(Config{SettleDelay: 10 * time.Millisecond})
	desc := cooperativeDescriptor(func(string) (string, error) {
		time.Sleep(2 * time.Second)
		return "unreachable", nil
	})

	result, err := h.RunTest(context.Background(), desc, testRef, "", 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, result.TimedOut)
	require.True(t, result.Crashed)
	require.Contains(t, result.Error, "timeout")
	require.GreaterOrEqual(t, result.ExecutionTimeMS, int64(200))
}

func TestHarness_crashIsRecorded(t *testing.T) {
	h := New(Config{SettleDelay: 10 * time.Millisecond, Mode: isolate.ModeInline})
	desc := cooperativeDescriptor(func(string) (string, error) {
		return "", errors.New("ValueError: bad input")
	})

	result, err := h.RunTest(context.Background(), desc, testRef, "", time.Second)
	require.NoError(t, err)
	require.True(t, result.Crashed)
	require.False(t, result.TimedOut)
	require.False(t, result.Success)
}

func TestHarness_processModeFallsBackWhenNotProcessSafe(t *testing.T) {
	h := New(Config{Mode: isolate.ModeProcess, SettleDelay: 10 * time.Millisecond})
	desc := target.Descriptor{ProcessSafe: false, Fn: func(string) (string, error) { return "ok", nil }}

	// selectMode must downgrade to worker-thread rather than attempting a
	// re-exec, so this must not require os.Executable()/a real binary.
	mode := h.selectMode(desc)
	require.Equal(t, isolate.ModeWorkerThread, mode)

	result, err := h.RunTest(context.Background(), desc, testRef, "", time.Second)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "ok", result.Output)
}

// A process-mode isolation failure (the re-exec'd binary can't be found,
// in this case) must never terminate the session: it is folded into a
// crashed RunResult, exactly like a crash inside the target itself.
func TestHarness_processModeIsolationFailureIsRecordedNotFatal(t *testing.T) {
	h := New(Config{
		Mode:           isolate.ModeProcess,
		ExecutablePath: "/nonexistent/escapesentry-binary",
	})
	desc := target.Descriptor{ProcessSafe: true, Fn: func(string) (string, error) { return "unreachable", nil }}

	result, err := h.RunTest(context.Background(), desc, testRef, "", time.Second)
	require.NoError(t, err)
	require.True(t, result.Crashed)
	require.False(t, result.TimedOut)
	require.False(t, result.Success)
	require.Contains(t, result.Error, "isolation failure")
}

func summaryOf(t *testing.T, results ...model.RunResult) model.Summary {
	t.Helper()
	var s model.Summary
	s.TotalTests = len(results)
	for _, r := range results {
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
	if s.TotalTests > 0 {
		s.CrashRate = float64(s.Crashes+s.Timeouts) / float64(s.TotalTests)
	}
	return s
}
