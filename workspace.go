// Package scarb ties the manifest, resolve, plan and procmacro packages
// together into one workspace-level orchestrator: discovering the
// workspace root and its members (§4.B, §6.1), wiring a resolve.Registry
// from the member manifests (§4.C-G), and writing back the resulting
// lockfile transactionally (§4.J). Grounded on the teacher's context.go
// (Ctx.LoadProject) and project.go (findProjectRoot), generalized from a
// single GOPATH-relative manifest.json to a glob-expanded, possibly
// multi-member Scarb.toml tree.
package scarb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/manifest"
)

var errWorkspaceNotFound = fmt.Errorf("could not find %s in this or any parent directory", manifest.ManifestFileName)

// Workspace is the fully loaded tree rooted at the manifest that declares
// `[workspace]` (or, for a standalone package, the package's own manifest
// standing in as its own single-member workspace), per §6.1.
type Workspace struct {
	Root    string
	Members []*manifest.Manifest
	// RootManifest is Members[i] for whichever member is the workspace
	// root, or the sole member for a standalone package.
	RootManifest *manifest.Manifest
}

// LoadWorkspace takes as the workspace root the nearest directory at or
// above path (the empty string means the current working directory) that
// contains a Scarb.toml, and loads every member manifest, resolving
// workspace-inherited fields against the root (§4.B rule 1). A
// [workspace] declared in a directory further up is not consulted.
func LoadWorkspace(path string) (*Workspace, error) {
	var start string
	var err error
	if path == "" {
		start, err = os.Getwd()
	} else {
		start, err = filepath.Abs(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolving start directory")
	}

	root, err := findManifestUpwards(start)
	if err != nil {
		return nil, err
	}

	rootDoc, err := manifest.LoadRaw(filepath.Join(root, manifest.ManifestFileName))
	if err != nil {
		return nil, err
	}

	var memberDirs []string
	if manifest.IsWorkspaceRoot(rootDoc) {
		memberDirs, err = expandWorkspaceMembers(root, rootDoc)
		if err != nil {
			return nil, err
		}
	} else {
		memberDirs = []string{root}
	}

	ws := &Workspace{Root: root}
	for _, dir := range memberDirs {
		mp := filepath.Join(dir, manifest.ManifestFileName)
		doc, err := manifest.LoadRaw(mp)
		if err != nil {
			return nil, err
		}

		var rootForInherit manifest.RawDoc
		if dir != root {
			rootForInherit = rootDoc
		}

		m, err := manifest.Canonicalize(mp, doc, rootForInherit, "")
		if err != nil {
			return nil, err
		}
		ws.Members = append(ws.Members, m)
		if dir == root {
			ws.RootManifest = m
		}
	}

	sort.Slice(ws.Members, func(i, j int) bool {
		return ws.Members[i].Package.Name.String() < ws.Members[j].Package.Name.String()
	})

	return ws, nil
}

// findManifestUpwards searches from the starting directory upwards looking
// for a manifest file until we get to the root of the filesystem.
func findManifestUpwards(from string) (string, error) {
	for {
		mp := filepath.Join(from, manifest.ManifestFileName)
		if _, err := os.Stat(mp); err == nil {
			return from, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(from)
		if parent == from {
			return "", errWorkspaceNotFound
		}
		from = parent
	}
}

// expandWorkspaceMembers resolves `[workspace] members`/`exclude` glob
// patterns into absolute package directories, each of which must itself
// contain a Scarb.toml.
func expandWorkspaceMembers(root string, doc manifest.RawDoc) ([]string, error) {
	wc, err := manifest.ParseWorkspaceConfigForDiscovery(doc)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(wc.ExcludeMembers))
	for _, pat := range wc.ExcludeMembers {
		matches, err := filepath.Glob(filepath.Join(root, pat))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid exclude pattern %q", pat)
		}
		for _, m := range matches {
			excluded[m] = true
		}
	}

	seen := map[string]bool{root: true}
	dirs := []string{root}
	for _, pat := range wc.Members {
		matches, err := filepath.Glob(filepath.Join(root, pat))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid members pattern %q", pat)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if excluded[m] || seen[m] {
				continue
			}
			if ok, _ := IsDir(m); !ok {
				continue
			}
			if ok, _ := IsRegular(filepath.Join(m, manifest.ManifestFileName)); !ok {
				continue
			}
			seen[m] = true
			dirs = append(dirs, m)
		}
	}
	return dirs, nil
}

// MemberByName looks up a workspace member manifest by package name.
func (w *Workspace) MemberByName(name string) (*manifest.Manifest, bool) {
	for _, m := range w.Members {
		if m.Package.Name.String() == name {
			return m, true
		}
	}
	return nil, false
}
