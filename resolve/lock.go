package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/software-mansion/scarb/scarbid"
)

// LockfileSchemaVersion is the only schema version this codec writes or
// accepts (§4.F).
const LockfileSchemaVersion = 1

// LockedPackage is one flat entry of a Lockfile: name, version,
// source-id-string, optional checksum, and a sorted list of dependency
// names (§3 Lockfile).
type LockedPackage struct {
	Name         string
	Version      string
	Source       string
	Checksum     string
	Dependencies []string
}

// Lockfile is the decoded form of Scarb.lock.
type Lockfile struct {
	Version  int
	Packages []LockedPackage
}

// NewLockfile builds a Lockfile from a completed Graph, sorted
// deterministically by name then version and excluding workspace members'
// internal version field when they carry a path-only source, per §3.
func NewLockfile(g *Graph, workspaceMemberIDs map[string]bool) *Lockfile {
	sorted := g.Sorted()
	packages := make([]LockedPackage, 0, len(sorted))
	for _, s := range sorted {
		deps := make([]string, 0, len(s.Dependencies))
		for _, d := range s.Dependencies {
			deps = append(deps, d.Name.String())
		}
		sort.Strings(deps)

		version := s.ID.Version.String()
		if s.ID.Source.Kind == scarbid.SourceKindPath && workspaceMemberIDs[s.ID.Name.String()] {
			version = ""
		}

		packages = append(packages, LockedPackage{
			Name:         s.ID.Name.String(),
			Version:      version,
			Source:       s.ID.Source.String(),
			Checksum:     s.Checksum.String(),
			Dependencies: deps,
		})
	}
	return &Lockfile{Version: LockfileSchemaVersion, Packages: packages}
}

// lockfileHeader is prepended to every serialized lockfile, matching the
// auto-generation notice §4.F requires.
const lockfileHeader = "# Code generated by scarb. DO NOT EDIT.\n"

type tomlLockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version,omitempty"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum,omitempty"`
	Dependencies []string `toml:"dependencies,omitempty"`
}

type tomlLockfile struct {
	Version int               `toml:"version"`
	Package []tomlLockPackage `toml:"package"`
}

// Encode serializes l as deterministic TOML (§4.F): packages already
// sorted by NewLockfile, dependency arrays already sorted, encoded via
// pelletier/go-toml the way manifest/raw.go decodes with it, for symmetry
// across the two TOML touch points in the module.
func Encode(l *Lockfile) ([]byte, error) {
	doc := tomlLockfile{Version: l.Version}
	for _, p := range l.Packages {
		doc.Package = append(doc.Package, tomlLockPackage{
			Name:         p.Name,
			Version:      p.Version,
			Source:       p.Source,
			Checksum:     p.Checksum,
			Dependencies: p.Dependencies,
		})
	}
	body, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding lockfile: %w", err)
	}
	var b strings.Builder
	b.WriteString(lockfileHeader)
	b.Write(body)
	return []byte(b.String()), nil
}

// Decode parses a lockfile previously written by Encode. A schema version
// other than 1 is rejected outright rather than guessed at.
func Decode(text []byte) (*Lockfile, error) {
	trimmed := strings.TrimPrefix(string(text), lockfileHeader)

	var doc tomlLockfile
	if err := toml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}
	if doc.Version != LockfileSchemaVersion {
		return nil, fmt.Errorf("unsupported lockfile schema version %d, want %d", doc.Version, LockfileSchemaVersion)
	}

	l := &Lockfile{Version: doc.Version}
	for _, p := range doc.Package {
		deps := append([]string{}, p.Dependencies...)
		sort.Strings(deps)
		l.Packages = append(l.Packages, LockedPackage{
			Name:         p.Name,
			Version:      p.Version,
			Source:       p.Source,
			Checksum:     p.Checksum,
			Dependencies: deps,
		})
	}
	sort.Slice(l.Packages, func(i, j int) bool {
		if l.Packages[i].Name != l.Packages[j].Name {
			return l.Packages[i].Name < l.Packages[j].Name
		}
		return l.Packages[i].Version < l.Packages[j].Version
	})
	return l, nil
}
