package resolve

import (
	"context"
	"sort"

	"github.com/software-mansion/scarb/scarbid"
)

// RootRequirement is one workspace member's own identity plus the
// dependency edges it contributes to the graph (§4.E: "Roots are
// workspace members").
type RootRequirement struct {
	Package      scarbid.PackageId
	Requirements []Requirement
}

// Graph is a completed resolve: every selected package plus the edges
// between them, honoring §3's resolve invariants.
type Graph struct {
	Packages map[string]Summary
}

// Sorted returns every selected package ordered by name then version, the
// order the lockfile codec serializes in (§4.F determinism requirement).
func (g *Graph) Sorted() []Summary {
	out := make([]Summary, 0, len(g.Packages))
	for _, s := range g.Packages {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID.Name != out[j].ID.Name {
			return out[i].ID.Name < out[j].ID.Name
		}
		return out[i].ID.Version.LessThan(out[j].ID.Version)
	})
	return out
}

type pendingReq struct {
	req Requirement
	by  scarbid.PackageId
}

// solver carries the read-only inputs to one resolve; all mutable state
// (selections, accumulated constraints) is threaded explicitly through
// solve's recursion rather than stored on this struct, so that
// backtracking is just "return and try the next candidate" instead of the
// teacher's explicit unselectLast()/vqstack pop dance in solver.go --
// idiomatic given Go's cheap map copies for a graph this size.
type solver struct {
	ctx context.Context
	reg *Registry
	// locked maps a group key to the version the lockfile pinned, tried
	// before any other candidate (§4.E point 1: "honors a prior
	// lockfile... pinned versions are preferred").
	locked map[string]scarbid.PackageId
}

// Solve runs the resolver over roots, honoring locked (may be nil) and
// always injecting stdlibReq into every root (§4.E point 4). It returns
// the completed dependency graph or a traceError explaining the failure.
func Solve(ctx context.Context, reg *Registry, roots []RootRequirement, locked []scarbid.PackageId, stdlibReq Requirement) (*Graph, error) {
	s := &solver{ctx: ctx, reg: reg, locked: make(map[string]scarbid.PackageId, len(locked))}
	for _, id := range locked {
		s.locked[groupKey(id.Name, id.Source)] = id
	}

	var pending []pendingReq
	for _, root := range roots {
		for _, r := range root.Requirements {
			pending = append(pending, pendingReq{req: r, by: root.Package})
		}
		hasStdlib := false
		for _, r := range root.Requirements {
			if r.Source.Kind == scarbid.SourceKindStandardLib {
				hasStdlib = true
				break
			}
		}
		if !hasStdlib {
			pending = append(pending, pendingReq{req: stdlibReq, by: root.Package})
		}
	}

	selected, err := s.solve(pending, map[string]Summary{}, map[string][]namedRequirement{}, map[string]scarbid.SourceId{})
	if err != nil {
		return nil, err
	}
	return &Graph{Packages: selected}, nil
}

func groupKey(name scarbid.PackageName, source scarbid.SourceId) string {
	return name.String() + "@" + source.String()
}

// solve processes one pending requirement per call, recursing with the
// rest of the worklist. selected/constraints/nameOwners are copied before
// mutation so that an unsuccessful branch leaves the caller's maps
// untouched -- the backtracking step is simply trying the next candidate
// in the loop below.
func (s *solver) solve(
	pending []pendingReq,
	selected map[string]Summary,
	constraints map[string][]namedRequirement,
	nameOwners map[string]scarbid.SourceId,
) (map[string]Summary, error) {
	if len(pending) == 0 {
		return selected, nil
	}

	head, rest := pending[0], pending[1:]
	group := groupKey(head.req.Name, head.req.Source)
	allReqs := append(append([]namedRequirement{}, constraints[group]...), namedRequirement{by: head.by, req: head.req.VersionReq})

	if existing, ok := selected[group]; ok {
		if !head.req.VersionReq.Satisfies(existing.ID.Version) {
			return nil, &disjointConstraintError{name: head.req.Name, a: allReqs[0], b: allReqs[len(allReqs)-1]}
		}
		newConstraints := copyConstraints(constraints)
		newConstraints[group] = allReqs
		return s.solve(rest, selected, newConstraints, nameOwners)
	}

	if owner, ok := nameOwners[head.req.Name.String()]; ok {
		if !owner.Equal(head.req.Source) && owner.Kind != scarbid.SourceKindStandardLib && head.req.Source.Kind != scarbid.SourceKindStandardLib {
			return nil, &duplicatePackageError{name: head.req.Name, sources: []scarbid.SourceId{owner, head.req.Source}}
		}
	}

	candidates, err := s.reg.Query(s.ctx, head.req.Source, head.req.Name)
	if err != nil {
		return nil, err
	}

	filtered := make([]Summary, 0, len(candidates))
	for _, c := range candidates {
		if c.Yanked {
			if locked, ok := s.locked[group]; !ok || !locked.Equal(c.ID) {
				continue
			}
		}
		ok := true
		for _, r := range allReqs {
			if !r.req.Satisfies(c.ID.Version) {
				ok = false
				break
			}
		}
		if ok {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil, &noVersionFoundError{name: head.req.Name, requirements: allReqs}
	}

	if locked, ok := s.locked[group]; ok {
		for i, c := range filtered {
			if c.ID.Equal(locked) {
				filtered[0], filtered[i] = filtered[i], filtered[0]
				break
			}
		}
	}

	for _, candidate := range filtered {
		newSelected := copySelected(selected)
		newSelected[group] = candidate

		newConstraints := copyConstraints(constraints)
		newConstraints[group] = allReqs

		newOwners := copyOwners(nameOwners)
		newOwners[head.req.Name.String()] = head.req.Source

		newPending := append([]pendingReq{}, rest...)
		for _, dep := range candidate.Dependencies {
			newPending = append(newPending, pendingReq{req: dep, by: candidate.ID})
		}

		result, err := s.solve(newPending, newSelected, newConstraints, newOwners)
		if err == nil {
			return result, nil
		}
	}

	return nil, &noVersionFoundError{name: head.req.Name, requirements: allReqs}
}

func copySelected(m map[string]Summary) map[string]Summary {
	out := make(map[string]Summary, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyConstraints(m map[string][]namedRequirement) map[string][]namedRequirement {
	out := make(map[string][]namedRequirement, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyOwners(m map[string]scarbid.SourceId) map[string]scarbid.SourceId {
	out := make(map[string]scarbid.SourceId, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
