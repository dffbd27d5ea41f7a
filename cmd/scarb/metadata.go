// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/software-mansion/scarb"
	"github.com/software-mansion/scarb/plan"
)

// metadataCmd resolves and plans the current workspace, emitting the
// compilation units an external build driver would consume (§6.4).
type metadataCmd struct{}

func (*metadataCmd) Name() string      { return "metadata" }
func (*metadataCmd) ShortHelp() string { return "print resolved compilation units as JSON" }

type metadataOutput struct {
	WorkspaceRoot string                  `json:"workspace_root"`
	Units         []*plan.CompilationUnit `json:"compilation_units"`
}

func (c *metadataCmd) Run(args []string) error {
	fs := pflag.NewFlagSet("metadata", pflag.ContinueOnError)
	path := fs.String("manifest-path", "", "path to the workspace or package to inspect")
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

	units, err := scarb.Plan(res.Graph, ws)
	if err != nil {
		return err
	}

	return emitJSON(metadataOutput{WorkspaceRoot: ws.Root, Units: units})
}
