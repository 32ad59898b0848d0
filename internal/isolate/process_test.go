//go:build !windows

package isolate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/stretchr/testify/require"
)

// scriptExe writes an executable shell script to a temp file and returns
// its path, standing in for a re-exec'd escapesentry binary without
// requiring the Go toolchain to build one.
func scriptExe(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-probe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunProcess_success(t *testing.T) {
	exe := scriptExe(t, `cat <&0 >/dev/null
echo '{"output":"ok","error":"","crashed":false,"escape_detected":false,"escape_details":{"threads":[],"processes":[],"async_tasks":[]}}' >&3
`)

	out, err := RunProcess(context.Background(), exe, model.TargetRef{Locator: "x", Symbol: "y"}, "input", 5*time.Second)
	require.NoError(t, err)
	require.True(t, out.HasDetails)
	require.False(t, out.Crashed)
	require.False(t, out.TimedOut)
	require.Equal(t, "ok", out.Output)
	require.True(t, out.Details.Empty())
}

func TestRunProcess_isolationFailure(t *testing.T) {
	exe := scriptExe(t, `exit 0
`)

	_, err := RunProcess(context.Background(), exe, model.TargetRef{Locator: "x", Symbol: "y"}, "input", 5*time.Second)
	require.Error(t, err)
	var isoErr *model.IsolationFailureError
	require.ErrorAs(t, err, &isoErr)
}

func TestRunProcess_timeout(t *testing.T) {
	exe := scriptExe(t, `sleep 5
`)

	start := time.Now()
	out, err := RunProcess(context.Background(), exe, model.TargetRef{Locator: "x", Symbol: "y"}, "input", 200*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.True(t, out.TimedOut)
	require.True(t, out.HasDetails)
	require.Less(t, elapsed, 4*time.Second, "timeout must cut the wait short, not wait out the child")
}
