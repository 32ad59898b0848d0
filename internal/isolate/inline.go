package isolate

import "time"

// RunInline runs fn directly on the caller's goroutine, comparing elapsed
// wall-clock time against timeout after the call returns — the call itself
// is never interrupted, so a slow target is only detected as timed out
// after the fact, exactly as SPEC_FULL.md §4.2 describes.
func RunInline(fn func(string) (string, error), input string, timeout time.Duration) Outcome {
	start := time.Now()
	output, err := invoke(fn, input)
	elapsed := time.Since(start)

	out := Outcome{Output: output}
	if err != nil {
		out.Crashed = true
		out.ErrMsg = err.Error()
	}
	if elapsed > timeout {
		out.TimedOut = true
	}
	return out
}
