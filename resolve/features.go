package resolve

import (
	"fmt"
	"sort"

	"github.com/software-mansion/scarb/scarbid"
)

// FeatureSelection is a fixed set of activated feature names for one
// CLI/build invocation (§4.G): either an explicit list, or everything a
// package declares (`--all-features`), optionally without its defaults
// (`--no-default-features`).
type FeatureSelection struct {
	Features          []string
	AllFeatures       bool
	NoDefaultFeatures bool
}

// declaredFeatures is the subset of a package's manifest the feature
// resolver needs: its own feature -> [feature-or-dependency-name] map.
// Callers supply this per package id so that `resolve` need not import
// `manifest`.
type declaredFeatures map[string][]string

// FeatureResolver accumulates activated features per package across every
// activation path in the dependency graph, unioning rather than
// overwriting, per §4.G: "a dependency is built with the union of
// features activated by all of its dependents."
type FeatureResolver struct {
	graph     *Graph
	declared  map[string]declaredFeatures // keyed by PackageId.String()
	activated map[string]map[string]bool  // keyed by PackageId.String()
}

// NewFeatureResolver prepares a resolver over g; declared supplies each
// node's own feature declarations (package id string -> feature name ->
// activates list, mirroring manifest.FeatureSet).
func NewFeatureResolver(g *Graph, declared map[string]declaredFeatures) *FeatureResolver {
	return &FeatureResolver{
		graph:     g,
		declared:  declared,
		activated: make(map[string]map[string]bool),
	}
}

// Activate unions sel's feature set into id's activation set and
// propagates it, fixed-point style: a node may be visited multiple times
// as new features arrive from different activation paths, but the
// algorithm terminates because the total number of (node, feature) pairs
// is finite and activation only grows. Propagation to a dependency
// happens only through "dep/feature" entries of an activated feature; the
// features a dependency edge itself requests, and the dependency's
// default feature, are not activated.
func (r *FeatureResolver) Activate(id scarbid.PackageId, sel FeatureSelection) error {
	feats, err := r.expand(id, sel)
	if err != nil {
		return err
	}
	return r.propagate(id, feats)
}

func (r *FeatureResolver) expand(id scarbid.PackageId, sel FeatureSelection) ([]string, error) {
	decl := r.declared[id.String()]
	var names []string
	switch {
	case sel.AllFeatures:
		for name := range decl {
			names = append(names, name)
		}
	default:
		names = append(names, sel.Features...)
		if !sel.NoDefaultFeatures {
			if _, ok := decl["default"]; ok {
				names = append(names, "default")
			}
		}
	}
	for _, n := range names {
		if n == "default" {
			continue
		}
		if _, ok := decl[n]; !ok {
			return nil, fmt.Errorf("%w: %s has no feature %q", errUnknownFeature, id, n)
		}
	}
	return names, nil
}

var errUnknownFeature = fmt.Errorf("unknown feature")

// propagate unions newFeatures into id's activation set; for every
// feature newly added (not previously present), it expands that feature's
// own `activates` list (which may name further own-features or
// dependency-qualified names of the form "dep/feature") and recurses.
func (r *FeatureResolver) propagate(id scarbid.PackageId, newFeatures []string) error {
	key := id.String()
	set, ok := r.activated[key]
	if !ok {
		set = make(map[string]bool)
		r.activated[key] = set
	}

	var toExpand []string
	for _, f := range newFeatures {
		if !set[f] {
			set[f] = true
			toExpand = append(toExpand, f)
		}
	}
	if len(toExpand) == 0 {
		return nil
	}

	decl := r.declared[key]
	summary := r.graph.Packages[key]
	depByName := make(map[string]scarbid.PackageId, len(summary.Dependencies))
	for _, d := range summary.Dependencies {
		for _, s := range r.graph.Packages {
			if s.ID.Name == d.Name {
				depByName[d.Name.String()] = s.ID
				break
			}
		}
	}

	for _, f := range toExpand {
		for _, activates := range decl[f] {
			if depName, depFeature, isCross := splitCrossFeature(activates); isCross {
				depID, ok := depByName[depName]
				if !ok {
					continue
				}
				if err := r.propagate(depID, []string{depFeature}); err != nil {
					return err
				}
				continue
			}
			if err := r.propagate(id, []string{activates}); err != nil {
				return err
			}
		}
	}

	return nil
}

func splitCrossFeature(s string) (dep, feature string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// Selected returns the sorted list of features activated for id.
func (r *FeatureResolver) Selected(id scarbid.PackageId) []string {
	set := r.activated[id.String()]
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
