// Package logx is escapesentry's structured logger. It is a thin facade
// over the teacher's own logiface framework, backed by stumpy (logiface's
// zero-extra-dependency JSON backend): this binary emits exactly one event
// shape to exactly one writer (stderr, so stdout stays reserved for the §6
// report), so callers only see a small With/Debug/Info/Warn/Error surface
// instead of logiface's fully generic Event-type-parameterized API.
package logx

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger writes structured log events at or above a minimum Level to an
// underlying io.Writer, via a logiface.Logger[*stumpy.Event].
type Logger struct {
	inner *logiface.Logger[*stumpy.Event]
}

// New constructs a Logger writing to w at minimum severity level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		inner: stumpy.L.New(
			stumpy.L.WithStumpy(
				stumpy.WithWriter(w),
				// Disabled rather than left at stumpy's default: nothing in
				// this binary reads its own log timestamps back, and a
				// fixed field set keeps output deterministic without a
				// mockable clock seam.
				stumpy.WithTimeField(""),
			),
			stumpy.L.WithLevel(level.logifaceLevel()),
		),
	}
}

// Default returns a Logger writing to os.Stderr at LevelInfo, the minimum
// viable ambient logger for cmd/escapesentry.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// With returns a child Logger that merges extra key/value pairs into every
// event it emits, without mutating the receiver — logiface.Logger.Clone's
// own non-destructive child-context shape.
func (l *Logger) With(kv ...any) *Logger {
	if l == nil || l.inner == nil {
		return l
	}
	ctx := l.inner.Clone()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, ok := kv[i+1].(error); ok {
			ctx.Err(err)
			continue
		}
		ctx.Field(key, kv[i+1])
	}
	return &Logger{inner: ctx.Logger()}
}

func (l *Logger) log(level Level, msg string, kv []any) {
	if l == nil || l.inner == nil {
		return
	}
	b := l.inner.Build(level.logifaceLevel())
	if !b.Enabled() {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, ok := kv[i+1].(error); ok {
			b.Err(err)
			continue
		}
		b.Field(key, kv[i+1])
	}
	b.Log(msg)
}

// Debug logs at LevelDebug. kv is an alternating key/value list.
func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, kv ...any) { l.log(LevelInfo, msg, kv) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, kv ...any) { l.log(LevelWarn, msg, kv) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }
