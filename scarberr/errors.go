// Package scarberr implements the §7 error taxonomy: a small set of tagged
// error kinds, each carrying a stable "E####" category code for the
// diagnostics sink, wrapping an underlying cause with
// github.com/pkg/errors the way the teacher wraps every fallible
// operation in context.go, toml.go and remote.go.
package scarberr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the tagged-variant discriminator of §7.
type Kind string

const (
	KindManifestSyntax      Kind = "ManifestSyntax"
	KindManifestSemantics   Kind = "ManifestSemantics"
	KindSourceNetwork       Kind = "SourceNetwork"
	KindSourceChecksum      Kind = "SourceChecksumMismatch"
	KindSourceNotFound      Kind = "SourceNotFound"
	KindGitRefUnknown       Kind = "GitRefUnknown"
	KindVersionConflict     Kind = "VersionConflict"
	KindUnknownFeature      Kind = "UnknownFeature"
	KindYankedVersion       Kind = "YankedVersion"
	KindCycleDetected       Kind = "CycleDetected"
	KindPluginBuildFailed   Kind = "PluginBuildFailed"
	KindPluginLoadFailed    Kind = "PluginLoadFailed"
	KindPluginAbiMismatch   Kind = "PluginAbiMismatch"
	KindPluginTrap          Kind = "PluginTrap"
	KindTargetConstraint    Kind = "TargetConstraint"
	KindIO                  Kind = "Io"
)

// codes assigns the stable E#### category code of §7's user-visible
// behavior requirement.
var codes = map[Kind]string{
	KindManifestSyntax:    "E0001",
	KindManifestSemantics: "E0002",
	KindSourceNetwork:     "E0101",
	KindSourceChecksum:    "E0102",
	KindSourceNotFound:    "E0103",
	KindGitRefUnknown:     "E0104",
	KindVersionConflict:   "E0201",
	KindUnknownFeature:    "E0202",
	KindYankedVersion:     "E0203",
	KindCycleDetected:     "E0204",
	KindPluginBuildFailed: "E0301",
	KindPluginLoadFailed:  "E0302",
	KindPluginAbiMismatch: "E0303",
	KindPluginTrap:        "E0304",
	KindTargetConstraint:  "E0401",
	KindIO:                "E0501",
}

// Span is an optional source-span annotation on a diagnostic.
type Span struct {
	File       string
	Start, End int
}

// Diagnostic is an error as rendered to the user-visible diagnostics sink
// (§7): a stable category code, a message, and an optional span.
type Diagnostic struct {
	Kind    Kind
	Code    string
	Message string
	Span    *Span
	Cause   error
}

func (d *Diagnostic) Error() string {
	if d.Span != nil {
		return fmt.Sprintf("%s: %s (%s:%d-%d)", d.Code, d.Message, d.Span.File, d.Span.Start, d.Span.End)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

// New constructs a Diagnostic of the given kind, wrapping cause with
// github.com/pkg/errors so callers retain a stack trace and the original
// message chain.
func New(kind Kind, cause error, format string, args ...interface{}) *Diagnostic {
	msg := fmt.Sprintf(format, args...)
	wrapped := cause
	if wrapped != nil {
		wrapped = errors.WithMessage(cause, msg)
	} else {
		wrapped = errors.New(msg)
	}
	return &Diagnostic{Kind: kind, Code: codes[kind], Message: msg, Cause: wrapped}
}

// WithSpan attaches a source span to a diagnostic and returns it, for
// chaining at the construction site.
func (d *Diagnostic) WithSpan(file string, start, end int) *Diagnostic {
	d.Span = &Span{File: file, Start: start, End: end}
	return d
}

// Fatal reports whether a diagnostic kind is fatal for the unit/package
// referencing it, vs. merely a warning (§7: YankedVersion is a warning
// when the lockfile pinned it).
func (d *Diagnostic) Fatal() bool {
	return d.Kind != KindYankedVersion
}
