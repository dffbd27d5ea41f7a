// Package plan implements §4.H's compilation-unit planner: lowering a
// feature-annotated resolve.Graph plus each workspace member's declared
// targets into the CompilationUnits the workspace orchestration layer
// schedules and the external compiler consumes.
//
// Grounded on the teacher's notion of a "build plan" (the closest analog
// is the way gps' Solution + SourceManager feed a set of LockedProjects
// into vendor placement); here the planner instead fans a single Resolve
// out into one independent unit per buildable target, the way a
// multi-binary Go module's build graph fans `go build ./...` out into one
// link step per package with a main function.
package plan

import (
	"fmt"
	"sort"

	"github.com/software-mansion/scarb/resolve"
	"github.com/software-mansion/scarb/scarbid"
)

// TargetKind mirrors manifest.TargetKind without importing the manifest
// package directly, the same decoupling choice as resolve.Requirement.
type TargetKind string

const (
	TargetKindLib              TargetKind = "lib"
	TargetKindExecutable       TargetKind = "executable"
	TargetKindStarknetContract TargetKind = "starknet-contract"
	TargetKindTest             TargetKind = "test"
	TargetKindCairoPlugin      TargetKind = "cairo-plugin"
)

// Target is the planner's view of one manifest.Target.
type Target struct {
	Kind                    TargetKind
	Name                    string
	BuildExternalContracts  []string // glob patterns, test targets only
}

// Component is one node of a CompilationUnit's transitive closure: a
// resolved package pinned to the specific Target selected for it (its lib
// target, or its cairo-plugin target when routed to Plugins instead).
type Component struct {
	Package scarbid.PackageId
	Target  Target
}

// CompilationUnit is a self-contained description of one build step (§3).
type CompilationUnit struct {
	MainComponent  Component
	Components     []Component
	Plugins        []Component
	CfgSet         []string
	CompilerConfig map[string]interface{}
	Fingerprint    string
}

// MemberInput is everything the planner needs about one workspace member
// package: its id, its declared targets, its selected features, and its
// profile-overlaid compiler config.
type MemberInput struct {
	Package        scarbid.PackageId
	Targets        []Target
	Features       []string
	CompilerConfig map[string]interface{}
}

// TargetConstraintError reports an edge-policy violation (§4.H: "e.g.
// enable-gas = false with a contract target").
type TargetConstraintError struct {
	Package scarbid.PackageId
	Reason  string
}

func (e *TargetConstraintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Package, e.Reason)
}

// libTargetIndex resolves, for each workspace member, which Component
// (lib or cairo-plugin) a dependent should bind to. Packages that are not
// workspace members have no entry.
type libTargetIndex struct {
	byPackage map[string]Component // keyed by PackageId.String()
}

func buildLibTargetIndex(members []MemberInput) libTargetIndex {
	idx := libTargetIndex{byPackage: make(map[string]Component, len(members))}
	for _, m := range members {
		for _, t := range m.Targets {
			switch t.Kind {
			case TargetKindLib:
				idx.byPackage[m.Package.String()] = Component{Package: m.Package, Target: t}
			case TargetKindCairoPlugin:
				if _, ok := idx.byPackage[m.Package.String()]; !ok {
					idx.byPackage[m.Package.String()] = Component{Package: m.Package, Target: t}
				}
			}
		}
	}
	return idx
}

// Plan produces one CompilationUnit per buildable target across every
// member in members, given the completed graph g (§4.H steps 1-3).
func Plan(g *resolve.Graph, members []MemberInput) ([]*CompilationUnit, error) {
	idx := buildLibTargetIndex(members)

	var units []*CompilationUnit
	for _, member := range members {
		for _, target := range member.Targets {
			if target.Kind == TargetKindCairoPlugin {
				// A cairo-plugin package is built by the plugin host,
				// not emitted as its own CompilationUnit.
				continue
			}
			u, err := planUnit(g, idx, member, target)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		}
	}

	sort.Slice(units, func(i, j int) bool {
		return units[i].MainComponent.Package.String() < units[j].MainComponent.Package.String()
	})
	return units, nil
}

func hasNonLibTarget(targets []Target) bool {
	for _, t := range targets {
		if t.Kind != TargetKindLib {
			return true
		}
	}
	return false
}

func planUnit(g *resolve.Graph, idx libTargetIndex, member MemberInput, target Target) (*CompilationUnit, error) {
	if err := checkTargetConstraints(member, target); err != nil {
		return nil, err
	}

	main := Component{Package: member.Package, Target: target}

	includeDev := target.Kind == TargetKindTest
	components, plugins := closure(g, idx, member.Package, includeDev)

	if target.Kind == TargetKindTest {
		for _, pattern := range target.BuildExternalContracts {
			matched := matchExternalContracts(g, idx, pattern)
			components = append(components, matched.components...)
			plugins = append(plugins, matched.plugins...)
		}
	}

	cfg := buildCfgSet(target, member.Features)

	fp := fingerprintUnit(main, components, plugins, cfg, member.CompilerConfig)

	return &CompilationUnit{
		MainComponent:  main,
		Components:     dedupeComponents(components),
		Plugins:        dedupeComponents(plugins),
		CfgSet:         cfg,
		CompilerConfig: member.CompilerConfig,
		Fingerprint:    fp,
	}, nil
}

// checkTargetConstraints enforces §4.H's "Conflicts ... fail with
// TargetConstraint" rule: a starknet-contract target requires gas
// accounting to remain enabled.
func checkTargetConstraints(member MemberInput, target Target) error {
	if target.Kind != TargetKindStarknetContract {
		return nil
	}
	if enableGas, ok := member.CompilerConfig["enable-gas"].(bool); ok && !enableGas {
		return &TargetConstraintError{
			Package: member.Package,
			Reason:  "starknet-contract target requires enable-gas = true",
		}
	}
	return nil
}

type closureResult struct {
	components []Component
	plugins    []Component
}

// closure walks g's dependency edges from root, selecting each
// dependency's lib target (or routing it to plugins when it is a
// cairo-plugin package with no lib target), per §4.H step 1-2. Only
// dependencies found in idx (workspace members) become Components or
// Plugins; other packages are walked through but not added.
func closure(g *resolve.Graph, idx libTargetIndex, root scarbid.PackageId, includeDev bool) (components, plugins []Component) {
	visited := map[string]bool{}
	var walk func(id scarbid.PackageId)
	walk = func(id scarbid.PackageId) {
		summary, ok := g.Packages[id.String()]
		if !ok {
			return
		}
		for _, dep := range summary.Dependencies {
			if dep.Dev && !includeDev {
				continue
			}
			depID := resolveDepID(g, dep)
			if depID.Name == "" {
				continue
			}
			key := depID.String()
			if visited[key] {
				continue
			}
			visited[key] = true

			if comp, ok := idx.byPackage[key]; ok {
				if comp.Target.Kind == TargetKindCairoPlugin {
					plugins = append(plugins, comp)
				} else {
					components = append(components, comp)
				}
			}
			walk(depID)
		}
	}
	walk(root)
	return components, plugins
}

func resolveDepID(g *resolve.Graph, dep resolve.Requirement) scarbid.PackageId {
	for _, s := range g.Packages {
		if s.ID.Name == dep.Name && dep.VersionReq.Satisfies(s.ID.Version) {
			return s.ID
		}
	}
	return scarbid.PackageId{}
}

type externalContractMatch struct {
	components []Component
	plugins    []Component
}

// matchExternalContracts extends the plugin/compilation set for
// build-external-contracts (§4.H edge policy), matching package names
// against pattern the way filepath.Match matches a glob.
func matchExternalContracts(g *resolve.Graph, idx libTargetIndex, pattern string) externalContractMatch {
	var m externalContractMatch
	for key, comp := range idx.byPackage {
		if globMatchPackageKey(pattern, key) {
			if comp.Target.Kind == TargetKindCairoPlugin {
				m.plugins = append(m.plugins, comp)
			} else {
				m.components = append(m.components, comp)
			}
		}
	}
	_ = g
	return m
}

func buildCfgSet(target Target, features []string) []string {
	cfg := []string{"target:" + string(target.Kind)}
	if target.Kind == TargetKindTest {
		cfg = append(cfg, "test")
	}
	for _, f := range features {
		cfg = append(cfg, "feature:"+f)
	}
	sort.Strings(cfg)
	return cfg
}

func dedupeComponents(comps []Component) []Component {
	seen := map[string]bool{}
	out := make([]Component, 0, len(comps))
	for _, c := range comps {
		key := c.Package.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package.String() < out[j].Package.String() })
	return out
}
