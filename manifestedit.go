// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scarb

import (
	"os"

	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/manifest"
)

// AddDependency inserts or overwrites a `[dependencies]` entry in the
// Scarb.toml at manifestPath, writing requirement as a bare version-string
// value. Grounded on the teacher's toml.go tomlMapper, which queried a
// parsed *toml.TomlTree with dotted paths ("$.dependencies"); here we use
// the same *toml.Tree (the current pelletier/go-toml API) to mutate a
// single key, then write the whole tree back with ToTomlString, so the
// file's original formatting and comments are not preserved.
func AddDependency(manifestPath, name, requirement string) error {
	tree, err := loadTomlTree(manifestPath)
	if err != nil {
		return err
	}

	depsTree, ok := tree.Get("dependencies").(*toml.Tree)
	if !ok {
		depsTree, err = toml.TreeFromMap(map[string]interface{}{})
		if err != nil {
			return err
		}
		tree.Set("dependencies", depsTree)
	}
	depsTree.Set(name, requirement)

	return writeTomlTree(manifestPath, tree)
}

// RemoveDependency deletes name from `[dependencies]` and
// `[dev-dependencies]` if present in either, returning an error if it was
// in neither.
func RemoveDependency(manifestPath, name string) error {
	tree, err := loadTomlTree(manifestPath)
	if err != nil {
		return err
	}

	removed := false
	for _, table := range []string{"dependencies", "dev-dependencies"} {
		sub, ok := tree.Get(table).(*toml.Tree)
		if !ok {
			continue
		}
		if sub.Has(name) {
			if err := sub.Delete(name); err != nil {
				return errors.Wrapf(err, "removing %q from [%s]", name, table)
			}
			removed = true
		}
	}
	if !removed {
		return errors.Errorf("dependency %q not found in %s", name, manifestPath)
	}

	return writeTomlTree(manifestPath, tree)
}

func loadTomlTree(manifestPath string) (*toml.Tree, error) {
	text, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", manifestPath)
	}
	tree, err := toml.LoadBytes(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", manifestPath)
	}
	return tree, nil
}

func writeTomlTree(manifestPath string, tree *toml.Tree) error {
	body, err := tree.ToTomlString()
	if err != nil {
		return errors.Wrap(err, "serializing manifest")
	}
	return os.WriteFile(manifestPath, []byte(body), 0o644)
}

// ValidateAfterEdit re-parses and re-canonicalizes manifestPath, the way
// `scarb add`/`scarb remove` confirm the file they just rewrote is still
// a valid manifest before reporting success (§4.B).
func ValidateAfterEdit(manifestPath string) (*manifest.Manifest, error) {
	doc, err := manifest.LoadRaw(manifestPath)
	if err != nil {
		return nil, err
	}
	return manifest.Canonicalize(manifestPath, doc, nil, "")
}
