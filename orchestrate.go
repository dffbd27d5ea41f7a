package scarb

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/manifest"
	"github.com/software-mansion/scarb/plan"
	"github.com/software-mansion/scarb/resolve"
	"github.com/software-mansion/scarb/scarbid"
)

// memberPackageID builds the scarbid.PackageId a workspace member is
// identified by in the resolve graph: its manifest's name/version, pinned
// to a path source rooted at its own directory.
func memberPackageID(m *manifest.Manifest) scarbid.PackageId {
	return scarbid.PackageId{
		Name:    m.Package.Name,
		Version: m.Package.Version,
		Source:  scarbid.NewPathSourceId(filepath.Dir(m.Path)),
	}
}

func featureNames(fs manifest.FeatureSet) []string {
	out := make([]string, 0, len(fs))
	for name := range fs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ResolveResult bundles a completed dependency graph with the set of
// package names that are direct dependencies of some workspace member,
// for feedback reporting (§4.E, §4.F).
type ResolveResult struct {
	Graph       *resolve.Graph
	DirectNames map[string]bool
}

// Resolve runs §4.E's solve over every workspace member's declared
// dependencies, honoring a prior lockfile's pins where still satisfiable
// and applying any `[patch]` overrides declared by the workspace root.
// Grounded on the teacher's Ctx.SourceManager + gps.Solve pairing
// (context.go, solver.go's top-level Solve entry point).
func Resolve(ctx context.Context, ws *Workspace, reg *resolve.Registry, lock *resolve.Lockfile, stdlibVersion scarbid.Version) (*ResolveResult, error) {
	var roots []resolve.RootRequirement
	direct := map[string]bool{}
	for _, m := range ws.Members {
		reqs := requirementsOf(m)
		for _, r := range reqs {
			direct[r.Name.String()] = true
		}
		roots = append(roots, resolve.RootRequirement{
			Package:      memberPackageID(m),
			Requirements: reqs,
		})
	}

	if root := ws.RootManifest; root != nil && root.Patch != nil {
		roots = applyManifestPatches(roots, root)
	}

	var locked []scarbid.PackageId
	if lock != nil {
		// Lock entries carry their source as a string; map it back to the
		// SourceId the requirements use so the solver can match each pin.
		sources := map[string]scarbid.SourceId{scarbid.StandardLibSourceId.String(): scarbid.StandardLibSourceId}
		for _, root := range roots {
			for _, r := range root.Requirements {
				sources[r.Source.String()] = r.Source
			}
		}
		for _, p := range lock.Packages {
			id, err := lockedPackageID(p)
			if err != nil {
				continue // a corrupt single entry should not abort resolution
			}
			id.Source = sources[p.Source]
			locked = append(locked, id)
		}
	}

	corePkgName, err := scarbid.NewPackageName("core")
	if err != nil {
		return nil, err
	}
	exactStdlibReq, err := scarbid.NewVersionReq("=" + stdlibVersion.String())
	if err != nil {
		return nil, err
	}
	stdlibReq := resolve.Requirement{
		Name:            corePkgName,
		VersionReq:      exactStdlibReq,
		Source:          scarbid.StandardLibSourceId,
		DefaultFeatures: true,
	}

	g, err := resolve.Solve(ctx, reg, roots, locked, stdlibReq)
	if err != nil {
		return nil, errors.Wrap(err, "resolving dependencies")
	}

	return &ResolveResult{Graph: g, DirectNames: direct}, nil
}

// applyManifestPatches converts the workspace root's canonical `[patch]`
// tables into resolve.PatchOverride values and applies them, per §4.E's
// "patch/lockfile interaction" open question (resolved in favor of
// subgraph-only invalidation; see DESIGN.md).
func applyManifestPatches(roots []resolve.RootRequirement, root *manifest.Manifest) []resolve.RootRequirement {
	var patches []resolve.PatchOverride
	for registryURL, byName := range root.Patch {
		overriddenSource, err := scarbid.NewRegistrySourceId(registryURL)
		if err != nil {
			continue
		}
		for name, dep := range byName {
			replacementSource, err := patchSourceID(registryURL, dep)
			if err != nil {
				continue
			}
			patches = append(patches, resolve.PatchOverride{
				Source:      overriddenSource,
				PackageName: name,
				Replacement: resolve.Requirement{
					Name:            name,
					VersionReq:      dep.Requirement,
					Source:          replacementSource,
					DefaultFeatures: dep.DefaultFeatures,
					Features:        dep.Features,
				},
			})
		}
	}
	if len(patches) == 0 {
		return roots
	}
	return resolve.ApplyPatches(roots, patches)
}

func patchSourceID(registryURL string, dep manifest.Dependency) (scarbid.SourceId, error) {
	switch {
	case dep.Path != "":
		return scarbid.NewPathSourceId(dep.Path), nil
	case dep.Git != "":
		return scarbid.NewGitSourceId(dep.Git, dep.GitRef)
	default:
		return scarbid.NewRegistrySourceId(registryURL)
	}
}

func lockedPackageID(p resolve.LockedPackage) (scarbid.PackageId, error) {
	name, err := scarbid.NewPackageName(p.Name)
	if err != nil {
		return scarbid.PackageId{}, err
	}
	var ver scarbid.Version
	if p.Version != "" {
		ver, err = scarbid.NewVersion(p.Version)
		if err != nil {
			return scarbid.PackageId{}, err
		}
	}
	return scarbid.PackageId{Name: name, Version: ver}, nil
}

// Plan lowers a resolved graph plus every workspace member's manifest
// targets into the compilation units the workspace builds, per §4.H.
func Plan(g *resolve.Graph, ws *Workspace) ([]*plan.CompilationUnit, error) {
	members := make([]plan.MemberInput, 0, len(ws.Members))
	for _, m := range ws.Members {
		members = append(members, plan.MemberInput{
			Package:        memberPackageID(m),
			Targets:        planTargetsOf(m),
			Features:       featureNames(m.Features),
			CompilerConfig: m.CompilerConfig,
		})
	}
	return plan.Plan(g, members)
}

func planTargetsOf(m *manifest.Manifest) []plan.Target {
	out := make([]plan.Target, 0, len(m.Targets))
	for _, t := range m.Targets {
		out = append(out, plan.Target{
			Kind:                   plan.TargetKind(t.Kind),
			Name:                   t.Name,
			BuildExternalContracts: t.BuildExternalContracts(),
		})
	}
	return out
}
