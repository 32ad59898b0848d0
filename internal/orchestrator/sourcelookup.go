package orchestrator

import (
	"os"

	"github.com/joeycumines/escapesentry/internal/model"
)

// DefaultSourceLookup treats ref.Locator as a filesystem path and reads it
// verbatim — the common case for a "go" target registered against a real
// source file rather than a synthetic in-memory one.
func DefaultSourceLookup(ref model.TargetRef) (filename, src string, err error) {
	b, err := os.ReadFile(ref.Locator)
	if err != nil {
		return "", "", err
	}
	return ref.Locator, string(b), nil
}
