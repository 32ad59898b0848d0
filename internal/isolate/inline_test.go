package isolate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunInline_success(t *testing.T) {
	out := RunInline(func(input string) (string, error) {
		return "echo:" + input, nil
	}, "hi", time.Second)

	require.False(t, out.Crashed)
	require.False(t, out.TimedOut)
	require.Equal(t, "echo:hi", out.Output)
}

func TestRunInline_crash(t *testing.T) {
	out := RunInline(func(string) (string, error) {
		return "", errors.New("boom")
	}, "x", time.Second)

	require.True(t, out.Crashed)
	require.Equal(t, "boom", out.ErrMsg)
}

func TestRunInline_panicIsRecovered(t *testing.T) {
	out := RunInline(func(string) (string, error) {
		panic("kaboom")
	}, "x", time.Second)

	require.True(t, out.Crashed)
	require.Contains(t, out.ErrMsg, "kaboom")
}

func TestRunInline_timeoutMarkedAfterTheFact(t *testing.T) {
	out := RunInline(func(string) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "done", nil
	}, "x", 10*time.Millisecond)

	require.True(t, out.TimedOut)
	require.False(t, out.Crashed)
	require.Equal(t, "done", out.Output)
}

func TestRunWorkerThread_success(t *testing.T) {
	out := RunWorkerThread(func(input string) (string, error) {
		return "ok:" + input, nil
	}, "y", time.Second)

	require.False(t, out.Crashed)
	require.False(t, out.TimedOut)
	require.Equal(t, "ok:y", out.Output)
}

func TestRunWorkerThread_abandonedOnTimeout(t *testing.T) {
	released := make(chan struct{})
	out := RunWorkerThread(func(string) (string, error) {
		<-released
		return "too late", nil
	}, "x", 10*time.Millisecond)

	require.True(t, out.TimedOut)
	close(released)
}
