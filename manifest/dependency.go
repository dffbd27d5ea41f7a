package manifest

import (
	"github.com/pkg/errors"
	"github.com/software-mansion/scarb/scarbid"
)

// DependencyKind distinguishes normal build dependencies from
// test/dev-only ones (§3).
type DependencyKind uint8

const (
	DependencyKindNormal DependencyKind = iota
	DependencyKindDev
)

// Dependency is the canonical form of a `[dependencies]` /
// `[dev-dependencies]` entry: §3's ManifestDependency.
type Dependency struct {
	Name            scarbid.PackageName
	Requirement     scarbid.VersionReq
	Path            string // non-empty for path dependencies
	Git             string // non-empty for git dependencies
	GitRef          scarbid.GitReference
	Registry        string // registry alias/URL, "" means the default registry
	Kind            DependencyKind
	DefaultFeatures bool
	DefaultFeaturesSet bool // whether default-features was explicit
	Features        []string
	InheritsWorkspace bool
}

// parseDependency interprets one dependency table value, which may be a
// bare version-requirement string or an inline table with keys version,
// path, git, branch, tag, rev, registry, features, default-features,
// workspace. Grounded on the teacher's manifest.go toProps, generalized
// from dep's {branch,revision,version} trio to Scarb's fuller dependency
// surface.
func parseDependency(name scarbid.PackageName, raw interface{}) (Dependency, error) {
	dep := Dependency{Name: name, DefaultFeatures: true}

	switch v := raw.(type) {
	case string:
		req, err := scarbid.NewVersionReq(v)
		if err != nil {
			return Dependency{}, errors.Wrapf(err, "dependency %q", name)
		}
		dep.Requirement = req
		return dep, nil
	case map[string]interface{}:
		d := rawDoc(v)
		if b, ok := d.boolean("workspace"); ok && b {
			dep.InheritsWorkspace = true
			return dep, nil
		}
		if s, ok := d.str("version"); ok {
			req, err := scarbid.NewVersionReq(s)
			if err != nil {
				return Dependency{}, errors.Wrapf(err, "dependency %q", name)
			}
			dep.Requirement = req
		} else {
			dep.Requirement = scarbid.AnyVersionReq()
		}
		if s, ok := d.str("path"); ok {
			dep.Path = s
		}
		if s, ok := d.str("git"); ok {
			dep.Git = s
			if s, ok := d.str("branch"); ok {
				dep.GitRef.Branch = s
			}
			if s, ok := d.str("tag"); ok {
				dep.GitRef.Tag = s
			}
			if s, ok := d.str("rev"); ok {
				dep.GitRef.Rev = s
			}
			if nonEmptyCount(dep.GitRef.Branch, dep.GitRef.Tag, dep.GitRef.Rev) > 1 {
				return Dependency{}, errors.Errorf("dependency %q: only one of branch, tag, rev may be set", name)
			}
		}
		if s, ok := d.str("registry"); ok {
			dep.Registry = s
		}
		if b, ok := d.boolean("default-features"); ok {
			dep.DefaultFeatures = b
			dep.DefaultFeaturesSet = true
		}
		dep.Features = d.strSlice("features")
		if nonEmptyCount(dep.Path, dep.Git) > 1 {
			return Dependency{}, errors.Errorf("dependency %q: only one of path, git may be set", name)
		}
		return dep, nil
	default:
		return Dependency{}, errors.Errorf("dependency %q: expected a string or table, got %T", name, raw)
	}
}

func nonEmptyCount(ss ...string) int {
	n := 0
	for _, s := range ss {
		if s != "" {
			n++
		}
	}
	return n
}

func parseDependencyTable(tbl rawDoc, kind DependencyKind) (map[scarbid.PackageName]Dependency, error) {
	out := make(map[scarbid.PackageName]Dependency, len(tbl))
	for k, v := range tbl {
		name, err := scarbid.NewPackageName(k)
		if err != nil {
			return nil, err
		}
		dep, err := parseDependency(name, v)
		if err != nil {
			return nil, err
		}
		dep.Kind = kind
		out[name] = dep
	}
	return out, nil
}
