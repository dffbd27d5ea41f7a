// Package resolve implements components C (source providers), D
// (registry & cache), E (the version solver), F (the lockfile codec) and
// G (feature resolution). Component A's identifiers live in scarbid.
//
// The package-level split mirrors the teacher's gps package: one
// Source capability-set interface with tagged concrete implementations
// (gps/source.go's `sourceType` switch), a Registry/SourceManager
// facade that wraps every Source with caching (sm_cache.go,
// source_manager.go), and a solver operating purely against that facade
// (solver.go).
package resolve

import (
	"context"

	"github.com/software-mansion/scarb/scarbid"
)

// Requirement is one edge's worth of dependency information needed by the
// solver: which package, what version constraint, from which source, and
// whether it's a normal or dev dependency with which features activated.
// It is the resolver's view of a manifest.Dependency (§3
// ManifestDependency), decoupled from the manifest package so `resolve`
// does not need to import it.
type Requirement struct {
	Name            scarbid.PackageName
	VersionReq      scarbid.VersionReq
	Source          scarbid.SourceId
	Dev             bool
	DefaultFeatures bool
	Features        []string
}

// Summary is everything the solver needs about one candidate version of a
// package, without needing the full manifest body (§3: "Summary =
// (PackageId, set of ManifestDependency, ...)").
type Summary struct {
	ID           scarbid.PackageId
	Dependencies []Requirement
	Yanked       bool
	// Checksum is populated for registry-sourced summaries; zero for
	// path/git/stdlib sources, which are fingerprinted instead (§4.D).
	Checksum scarbid.Checksum
}

// Source is the capability set every source kind implements: query,
// download, identify itself, and report whether a version is yanked.
// Modeled as a tagged-variant-friendly interface rather than an
// inheritance hierarchy, per §9 "Polymorphism".
type Source interface {
	// Name identifies the source for diagnostics and cache keys.
	Name() string
	// SourceId returns the canonical SourceId this Source serves.
	SourceId() scarbid.SourceId
	// Query returns every version known to satisfy req's name
	// (unfiltered by version -- the resolver applies req.VersionReq
	// itself), per §4.C.
	Query(ctx context.Context, name scarbid.PackageName) ([]Summary, error)
	// Download materializes the package's source tree locally and
	// returns its path, along with a checksum for content-addressed
	// sources (empty for path/git).
	Download(ctx context.Context, id scarbid.PackageId) (PackagePath, error)
	// IsYanked reports whether a specific version was pulled from
	// circulation by its publisher (registry sources only; always
	// false elsewhere).
	IsYanked(ctx context.Context, id scarbid.PackageId) (bool, error)
}

// PackagePath is a materialized package source tree on the local
// filesystem (§4.C "download(...) -> PackagePath").
type PackagePath struct {
	Dir      string
	Checksum scarbid.Checksum
}
