// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/software-mansion/scarb"
	"github.com/software-mansion/scarb/manifest"
)

// addCmd inserts a dependency into the current package's manifest and
// re-parses the manifest to confirm it is still valid (§4.B); it does not
// re-resolve the dependency graph.
type addCmd struct{}

func (*addCmd) Name() string      { return "add" }
func (*addCmd) ShortHelp() string { return "add <name> <requirement> [--manifest-path]" }

func (c *addCmd) Run(args []string) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	path := fs.String("manifest-path", "", "path to the package whose manifest is edited")
	_, _, _, err := sharedSetup(fs, args)
	if err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return errors.New("usage: scarb add <name> <requirement>")
	}
	name, requirement := rest[0], rest[1]

	manifestPath, err := resolveManifestPath(*path)
	if err != nil {
		return err
	}

	if err := scarb.AddDependency(manifestPath, name, requirement); err != nil {
		return err
	}

	m, err := scarb.ValidateAfterEdit(manifestPath)
	if err != nil {
		return errors.Wrap(err, "manifest is invalid after edit")
	}

	return emitJSON(struct {
		Package string `json:"package"`
		Added   string `json:"added"`
	}{Package: m.Package.Name.String(), Added: name + " " + requirement})
}

// resolveManifestPath finds the Scarb.toml that `scarb add`/`scarb
// remove` edit: the one explicitly named, or the current package's own,
// found by loading the workspace rooted at the current directory.
func resolveManifestPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	ws, err := scarb.LoadWorkspace("")
	if err != nil {
		return "", err
	}
	if ws.RootManifest == nil {
		return "", errors.New("no package manifest found in this workspace")
	}
	return filepath.Join(filepath.Dir(ws.RootManifest.Path), manifest.ManifestFileName), nil
}
