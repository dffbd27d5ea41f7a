// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/software-mansion/scarb"
)

// resolveCmd runs §4.E's solve over the current workspace and prints the
// resulting graph, without writing a lockfile.
type resolveCmd struct{}

func (*resolveCmd) Name() string      { return "resolve" }
func (*resolveCmd) ShortHelp() string { return "resolve workspace dependencies and print the graph" }

type resolveOutput struct {
	Packages []packageOutput `json:"packages"`
}

type packageOutput struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Source       string   `json:"source"`
	Dependencies []string `json:"dependencies,omitempty"`
}

func (c *resolveCmd) Run(args []string) error {
	fs := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
	path := fs.String("manifest-path", "", "path to the workspace or package to resolve")
	cfg, compilerVersion, log, err := sharedSetup(fs, args)
	if err != nil {
		return err
	}

	ws, err := scarb.LoadWorkspace(*path)
	if err != nil {
		return err
	}

	creds, err := scarb.LoadRegistryCredentials(filepath.Join(cfg.CacheRoot, scarb.RegistryCredentialsFileName))
	if err != nil {
		return err
	}

	reg, err := scarb.BuildRegistry(ws, cfg, creds, compilerVersion)
	if err != nil {
		return err
	}

	lock, err := scarb.ReadLockfile(ws.Root)
	if err != nil {
		return err
	}

	res, err := scarb.Resolve(context.Background(), ws, reg, lock, compilerVersion)
	if err != nil {
		return err
	}
	scarb.LogResolutionFeedback(log, res.Graph, res.DirectNames)

	var out resolveOutput
	for _, s := range res.Graph.Sorted() {
		deps := make([]string, 0, len(s.Dependencies))
		for _, d := range s.Dependencies {
			deps = append(deps, d.Name.String())
		}
		out.Packages = append(out.Packages, packageOutput{
			Name:         s.ID.Name.String(),
			Version:      s.ID.Version.String(),
			Source:       s.ID.Source.String(),
			Dependencies: deps,
		})
	}
	return emitJSON(out)
}
