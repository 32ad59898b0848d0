// Package dispatch implements the Language Dispatcher (SPEC_FULL.md §4.7):
// it resolves a request's language tag to either the native Go loader and
// static analyzer, or an out-of-process bridge for every other language.
package dispatch

import (
	"github.com/joeycumines/escapesentry/internal/isolate"
	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/joeycumines/escapesentry/internal/staticanalysis"
	"github.com/joeycumines/escapesentry/internal/target"
)

// Loader resolves a TargetRef to a runnable descriptor.
type Loader func(ref model.TargetRef) (target.Descriptor, error)

// StaticAnalyzer runs the syntactic escape-pattern scan for one language.
type StaticAnalyzer func(filename, src, functionName string) ([]model.EscapeFinding, error)

// Entry is what the Registry holds per language tag.
type Entry struct {
	Loader         Loader
	SupportedModes []isolate.Mode
	StaticAnalyzer StaticAnalyzer
}

// Registry maps a language tag to its native entry. "go" is registered at
// init; every other tag falls through to BridgeRegistry.
var Registry = map[string]Entry{}

func init() {
	Registry["go"] = Entry{
		Loader:         target.Load,
		SupportedModes: []isolate.Mode{isolate.ModeProcess, isolate.ModeWorkerThread, isolate.ModeInline},
		StaticAnalyzer: staticanalysis.Analyze,
	}
}

// BridgeConfig names the out-of-process command a bridged language's
// analysis request is marshaled to.
type BridgeConfig struct {
	Command string
	Args    []string
}

// BridgeRegistry maps a language tag not present in Registry to the bridge
// command that implements it. Populated by bridge adapters (bridge.Python
// registers itself at init via RegisterBridge) and by callers wiring in
// their own.
var BridgeRegistry = map[string]BridgeConfig{}

// RegisterBridge adds or replaces a bridge command for language.
func RegisterBridge(language string, cfg BridgeConfig) {
	BridgeRegistry[language] = cfg
}

// Resolve reports whether language is handled natively, via a bridge, or
// not at all.
func Resolve(language string) (entry Entry, bridge BridgeConfig, isNative, isBridged bool) {
	if e, ok := Registry[language]; ok {
		return e, BridgeConfig{}, true, false
	}
	if b, ok := BridgeRegistry[language]; ok {
		return Entry{}, b, false, true
	}
	return Entry{}, BridgeConfig{}, false, false
}
