// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "github.com/spf13/pflag"

// scarbVersion is the toolchain's own release version, bumped at tag
// time. There is no embedded build-info mechanism here, so it is a plain
// constant.
const scarbVersion = "0.1.0"

// versionCmd prints the toolchain and pinned Cairo compiler versions.
type versionCmd struct{}

func (*versionCmd) Name() string      { return "version" }
func (*versionCmd) ShortHelp() string { return "print scarb and cairo compiler versions" }

func (c *versionCmd) Run(args []string) error {
	fs := pflag.NewFlagSet("version", pflag.ContinueOnError)
	_, compilerVersion, _, err := sharedSetup(fs, args)
	if err != nil {
		return err
	}
	return emitJSON(struct {
		Scarb         string `json:"scarb"`
		CairoCompiler string `json:"cairo_compiler"`
	}{Scarb: scarbVersion, CairoCompiler: compilerVersion.String()})
}
