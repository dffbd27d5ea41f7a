// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/software-mansion/scarb"
	"github.com/software-mansion/scarb/resolve"
)

// updateCmd re-resolves the workspace, writes the refreshed lockfile, and
// prints what changed (§4.F, §4.J).
type updateCmd struct{}

func (*updateCmd) Name() string      { return "update" }
func (*updateCmd) ShortHelp() string { return "re-resolve dependencies and rewrite Scarb.lock" }

func (c *updateCmd) Run(args []string) error {
	fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
	path := fs.String("manifest-path", "", "path to the workspace or package to update")
	precise := fs.Bool("precise", false, "keep every currently locked version that still satisfies its requirement")
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

	oldLock, err := scarb.ReadLockfile(ws.Root)
	if err != nil {
		return err
	}

	var lockToHonor *resolve.Lockfile
	if *precise {
		lockToHonor = oldLock
	}

	res, err := scarb.Resolve(context.Background(), ws, reg, lockToHonor, compilerVersion)
	if err != nil {
		return err
	}
	scarb.LogResolutionFeedback(log, res.Graph, res.DirectNames)

	memberIDs := make(map[string]bool, len(ws.Members))
	for _, m := range ws.Members {
		memberIDs[m.Package.Name.String()] = true
	}
	newLock := resolve.NewLockfile(res.Graph, memberIDs)

	diff := scarb.DiffLockfiles(oldLock, newLock)
	scarb.LogBrokenLockFeedback(log, diff)

	sw := &scarb.SafeWriter{Lockfile: newLock}
	if err := sw.Write(ws.Root); err != nil {
		return err
	}

	if diff != nil {
		fmt.Fprint(os.Stdout, diff.Format())
	}
	return nil
}
