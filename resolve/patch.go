package resolve

import "github.com/software-mansion/scarb/scarbid"

// PatchOverride replaces every requirement on a given package name coming
// from a given source with a different requirement, per §4.E point 5
// ("the workspace root may supply a [patch] table mapping source-id to a
// list of dependency overrides; overridden dependencies are replaced at
// query time before resolution"). The conversion from manifest.Patch's
// nested map into a flat slice of these happens in the workspace
// orchestration layer, which already imports both manifest and resolve.
type PatchOverride struct {
	Source      scarbid.SourceId
	PackageName scarbid.PackageName
	Replacement Requirement
}

// ApplyPatches rewrites every root requirement matching a patch's (source,
// name) pair, substituting the patch's replacement requirement. It is
// applied once, before Solve begins, to the roots' own requirement lists;
// requirements declared by dependencies are not rewritten.
func ApplyPatches(roots []RootRequirement, patches []PatchOverride) []RootRequirement {
	if len(patches) == 0 {
		return roots
	}
	index := make(map[string]Requirement, len(patches))
	for _, p := range patches {
		index[groupKey(p.PackageName, p.Source)] = p.Replacement
	}

	out := make([]RootRequirement, len(roots))
	for i, root := range roots {
		reqs := make([]Requirement, len(root.Requirements))
		for j, r := range root.Requirements {
			if replacement, ok := index[groupKey(r.Name, r.Source)]; ok {
				reqs[j] = replacement
			} else {
				reqs[j] = r
			}
		}
		out[i] = RootRequirement{Package: root.Package, Requirements: reqs}
	}
	return out
}
