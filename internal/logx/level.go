package logx

import (
	"strconv"

	"github.com/joeycumines/logiface"
)

// Level models the severity of a log event, using the syslog severity
// ordering (lower is more severe), adapted from logiface.Level: this
// binary only ever needs a handful of the original's levels, so the full
// syslog table is collapsed to the subset escapesentry actually emits.
type Level int8

const (
	// LevelDisabled suppresses all output.
	LevelDisabled Level = iota - 1
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

// String renders the short keyword for the level, matching the teacher's
// convention of a compact, lowercase severity tag.
func (l Level) String() string {
	switch l {
	case LevelDisabled:
		return "disabled"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return strconv.FormatInt(int64(l), 10)
	}
}

// Enabled reports whether events at this level should be written.
func (l Level) Enabled() bool { return l > LevelDisabled }

// logifaceLevel maps Level onto the nearest logiface.Level, per the syslog
// ordering both scales share.
func (l Level) logifaceLevel() logiface.Level {
	switch l {
	case LevelError:
		return logiface.LevelError
	case LevelWarn:
		return logiface.LevelWarning
	case LevelInfo:
		return logiface.LevelInformational
	case LevelDebug:
		return logiface.LevelDebug
	default:
		return logiface.LevelDisabled
	}
}
