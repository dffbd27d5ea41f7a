package scarbid

import "fmt"

// PackageId is the unique identity of a resolved package: its name, its
// concrete version, and the source it came from. Within any one Resolve
// graph, a PackageId is unique (§3); the same PackageName may repeat only
// across distinct SourceIds (e.g. a user package shadowing the name of a
// registry package it has path-overridden).
type PackageId struct {
	Name    PackageName
	Version Version
	Source  SourceId
}

func (id PackageId) String() string {
	return fmt.Sprintf("%s v%s (%s)", id.Name, id.Version, id.Source)
}

// Equal reports whether two PackageIds refer to the same resolved package.
func (id PackageId) Equal(o PackageId) bool {
	return id.Name == o.Name && id.Version.Equal(o.Version) && id.Source.Equal(o.Source)
}

// IsStandardLib reports whether id names the injected core library
// (§3: "PackageId.source-id.kind = standard-library is reserved").
func (id PackageId) IsStandardLib() bool {
	return id.Source.Kind == SourceKindStandardLib
}
