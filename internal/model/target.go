// Package model defines the wire and in-process types shared by every
// escapesentry component: target references, run inputs, escape details,
// results, findings, vulnerabilities and the session report. Nothing in
// this package depends on any other escapesentry package, by design — it
// is the one vocabulary every component speaks.
package model

import "strings"

// TargetRef identifies a callable to run or analyze, in the form
// "<locator>:<symbol>". The locator is either a source-file path or a
// dotted logical name understood by the target's language loader.
type TargetRef struct {
	Locator string
	Symbol  string
}

// String renders the canonical "<locator>:<symbol>" form.
func (r TargetRef) String() string {
	return r.Locator + ":" + r.Symbol
}

// ParseTargetRef splits a "<locator>:<symbol>" reference on its last colon,
// so that Windows-style drive letters (e.g. "C:\pkg\file.go:Handler") never
// collide with the locator/symbol separator.
func ParseTargetRef(ref string) (TargetRef, error) {
	i := strings.LastIndexByte(ref, ':')
	if i <= 0 || i == len(ref)-1 {
		return TargetRef{}, &MalformedRequestError{Field: "target", Reason: "expected \"<locator>:<symbol>\", got " + quote(ref)}
	}
	return TargetRef{Locator: ref[:i], Symbol: ref[i+1:]}, nil
}

func quote(s string) string { return "\"" + s + "\"" }
