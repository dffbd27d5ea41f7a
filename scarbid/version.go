// Package scarbid defines the core identity types shared by every other
// package in the module: package names, versions and version requirements,
// source identifiers, package identifiers, and content checksums.
//
// These mirror the split the teacher project drew between an opaque
// gps.Version interface and concrete implementations (gps/version.go), but
// collapsed into concrete structs: a Cairo package only ever carries one
// version representation, so the extra polymorphism bought nothing here.
package scarbid

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// Version is a strict three-component semver value, optionally carrying a
// pre-release and build metadata component. It wraps Masterminds/semver,
// which already implements comparison and prerelease ordering correctly;
// the only behavior this type adds on top is the 0.x.y compatibility rule
// described below.
type Version struct {
	v *semver.Version
}

// NewVersion parses a strict semver string.
func NewVersion(s string) (Version, error) {
	// The library parser also accepts "v1.2" and "1"; only MAJOR.MINOR.PATCH is allowed here.
	if core := strings.SplitN(strings.SplitN(s, "+", 2)[0], "-", 2)[0]; strings.Count(core, ".") != 2 || strings.HasPrefix(s, "v") {
		return Version{}, errors.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, errors.Wrapf(err, "invalid version %q", s)
	}
	return Version{v: sv}, nil
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool { return v.v == nil }

func (v Version) Major() int64 { return v.v.Major() }
func (v Version) Minor() int64 { return v.v.Minor() }
func (v Version) Patch() int64 { return v.v.Patch() }
func (v Version) Prerelease() string { return v.v.Prerelease() }

// Compare returns -1, 0 or 1 depending on whether v is less than, equal to,
// or greater than o, per strict semver precedence.
func (v Version) Compare(o Version) int { return v.v.Compare(o.v) }

func (v Version) LessThan(o Version) bool { return v.Compare(o) < 0 }
func (v Version) Equal(o Version) bool    { return v.Compare(o) == 0 }

// CompatibleWith implements the §4.A 0.x.y compatibility carve-out: two
// 0.x versions are considered compatible (interchangeable for the purpose
// of "duplicate package must resolve to one version" checks) iff they share the same
// major (0) and minor component, and v is at least as new a patch as o,
// i.e. for 0.x.y, a version 0.x.z is compatible with it iff x>0 and z<=y.
// This deliberately diverges from strict semver, where every distinct 0.x.y
// is its own incompatible line; it is documented here and in the parser
// tests precisely because it is surprising.
func (v Version) CompatibleWith(o Version) bool {
	if v.Major() != 0 || o.Major() != 0 {
		return v.Major() == o.Major() && v.Minor() == o.Minor() && !v.LessThan(o)
	}
	if v.Minor() == 0 {
		// 0.0.z lines carry no compatibility guarantee at all.
		return v.Equal(o)
	}
	return v.Minor() == o.Minor() && o.Patch() <= v.Patch()
}

func (v Version) underlying() *semver.Version { return v.v }

// MustVersion is a test/fixture helper: it panics on a malformed string.
func MustVersion(s string) Version {
	v, err := NewVersion(s)
	if err != nil {
		panic(fmt.Sprintf("scarbid: MustVersion(%q): %v", s, err))
	}
	return v
}
