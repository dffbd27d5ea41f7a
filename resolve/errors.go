package resolve

import (
	"fmt"
	"strings"

	"github.com/software-mansion/scarb/scarbid"
)

// UnknownSourceError is returned when a Requirement names a SourceId that
// was never registered with the Registry.
type UnknownSourceError struct {
	Source scarbid.SourceId
}

func (e UnknownSourceError) Error() string {
	return fmt.Sprintf("no source configured for %s", e.Source)
}

// traceError is implemented by every solve failure that can render a
// human-readable explanation of why the solve failed, mirroring the
// teacher's traceError interface in errors.go (noVersionError,
// disjointConstraintFailure, ...): Error() gives the short message,
// traceString() gives the verbose multi-line explanation used when a
// failure needs to be reported all the way up to the user.
type traceError interface {
	error
	traceString() string
}

// noVersionFoundError reports that no candidate version of a package
// satisfied every requirement placed on it, listing the requirements that
// conflicted. Grounded on the teacher's noVersionError.
type noVersionFoundError struct {
	name         scarbid.PackageName
	requirements []namedRequirement
}

type namedRequirement struct {
	by  scarbid.PackageId
	req scarbid.VersionReq
}

func (e *noVersionFoundError) Error() string {
	return fmt.Sprintf("no version of %s satisfies all requirements", e.name)
}

func (e *noVersionFoundError) traceString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no version of %s could be found that satisfies:\n", e.name)
	for _, r := range e.requirements {
		fmt.Fprintf(&b, "  %s requires %s %s\n", r.by, e.name, r.req)
	}
	return b.String()
}

// disjointConstraintError reports that two requirements on the same
// package have constraints with no version in common, mirroring the
// teacher's disjointConstraintFailure.
type disjointConstraintError struct {
	name scarbid.PackageName
	a, b namedRequirement
}

func (e *disjointConstraintError) Error() string {
	return fmt.Sprintf("conflicting requirements on %s", e.name)
}

func (e *disjointConstraintError) traceString() string {
	return fmt.Sprintf(
		"%s requires %s %s, but %s requires %s %s, and no version satisfies both",
		e.a.by, e.name, e.a.req, e.b.by, e.name, e.b.req,
	)
}

// duplicatePackageError reports two distinct sources claiming the same
// package name in a way not permitted by §3's resolve invariant ("no two
// nodes with the same PackageName unless they originate from distinct
// source-ids").
type duplicatePackageError struct {
	name    scarbid.PackageName
	sources []scarbid.SourceId
}

func (e *duplicatePackageError) Error() string {
	return fmt.Sprintf("package %s resolves ambiguously across sources", e.name)
}

func (e *duplicatePackageError) traceString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is required from multiple incompatible sources:\n", e.name)
	for _, s := range e.sources {
		fmt.Fprintf(&b, "  %s\n", s)
	}
	return b.String()
}

// yankedVersionError reports that the lockfile pinned a version which the
// registry now reports as yanked (§7 KindYankedVersion).
type yankedVersionError struct {
	id scarbid.PackageId
}

func (e *yankedVersionError) Error() string {
	return fmt.Sprintf("%s has been yanked by its publisher", e.id)
}

func (e *yankedVersionError) traceString() string { return e.Error() }
