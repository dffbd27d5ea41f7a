// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/software-mansion/scarb"
)

// removeCmd deletes a dependency from the current package's manifest
// (§4.B).
type removeCmd struct{}

func (*removeCmd) Name() string      { return "remove" }
func (*removeCmd) ShortHelp() string { return "remove <name> [--manifest-path]" }

func (c *removeCmd) Run(args []string) error {
	fs := pflag.NewFlagSet("remove", pflag.ContinueOnError)
	path := fs.String("manifest-path", "", "path to the package whose manifest is edited")
	_, _, _, err := sharedSetup(fs, args)
	if err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return errors.New("usage: scarb remove <name>")
	}
	name := rest[0]

	manifestPath, err := resolveManifestPath(*path)
	if err != nil {
		return err
	}

	if err := scarb.RemoveDependency(manifestPath, name); err != nil {
		return err
	}

	m, err := scarb.ValidateAfterEdit(manifestPath)
	if err != nil {
		return errors.Wrap(err, "manifest is invalid after edit")
	}

	return emitJSON(struct {
		Package string `json:"package"`
		Removed string `json:"removed"`
	}{Package: m.Package.Name.String(), Removed: name})
}
