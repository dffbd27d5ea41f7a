package scarbid

import (
	"strings"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// VersionReq is a version requirement expression: caret (default), tilde,
// wildcard, exact, comparison operators, or a comma-joined conjunction of
// any of the above. It is a thin adapter over Masterminds/semver's
// Constraint syntax, which already implements all of these forms; see
// §4.A.
type VersionReq struct {
	raw string
	c   semver.Constraint
}

// AnyVersionReq matches every version.
func AnyVersionReq() VersionReq {
	c, _ := semver.NewConstraint("*")
	return VersionReq{raw: "*", c: c}
}

// NewVersionReq parses a requirement string as described in §4.A.
func NewVersionReq(s string) (VersionReq, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return AnyVersionReq(), nil
	}
	// A bare version ("1.2.3") is a caret requirement; the underlying
	// library would read it as exact, so the caret is made explicit.
	parts := strings.Split(trimmed, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' && !strings.ContainsAny(p, "*xX ") {
			p = "^" + p
		}
		parts[i] = p
	}
	c, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return VersionReq{}, errors.Wrapf(err, "invalid version requirement %q", s)
	}
	return VersionReq{raw: trimmed, c: c}, nil
}

func (r VersionReq) String() string { return r.raw }

// Satisfies reports whether v meets the requirement. On failure, callers
// needing the `IncompatibleVersion` diagnostic of §4.A should use
// Explain instead, which reports the offending bounds.
func (r VersionReq) Satisfies(v Version) bool {
	if r.c == nil {
		return true
	}
	return r.c.Admits(v.v) == nil
}

// Explain returns a human-readable reason v does not satisfy r, or "" if
// it does.
func (r VersionReq) Explain(v Version) string {
	if r.c == nil {
		return ""
	}
	if err := r.c.Admits(v.v); err != nil {
		return errors.Wrapf(err, "version %s does not satisfy requirement %s", v, r.raw).Error()
	}
	return ""
}

// IncompatibleVersionError is returned when a concrete dependency version
// fails to satisfy its declared requirement.
type IncompatibleVersionError struct {
	Package    string
	Requirement VersionReq
	Got        Version
}

func (e *IncompatibleVersionError) Error() string {
	return errors.Errorf("package %s: version %s does not satisfy requirement %s", e.Package, e.Got, e.Requirement).Error()
}
