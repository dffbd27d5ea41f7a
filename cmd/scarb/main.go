// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scarb is the front door over the resolve/plan/procmacro
// pipeline: resolve, metadata and update load the workspace, build a
// registry and run the resolver; add, remove and version do not build a
// registry. Results are printed as newline-delimited JSON (§6.4), except
// update, which prints a plain-text lockfile diff. It mirrors the
// teacher's command interface (main.go's command registry) rewired from
// flag to pflag.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/software-mansion/scarb/scarbconfig"
	"github.com/software-mansion/scarb/scarbid"
	"github.com/software-mansion/scarb/scarblog"
)

// command mirrors the teacher's command interface (main.go), trimmed to
// what the scarb front door actually needs.
type command interface {
	Name() string
	ShortHelp() string
	Run(args []string) error
}

var commands = []command{
	&resolveCmd{},
	&metadataCmd{},
	&updateCmd{},
	&addCmd{},
	&removeCmd{},
	&versionCmd{},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	for _, c := range commands {
		if c.Name() == name {
			if err := c.Run(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Fprintf(os.Stderr, "scarb: unknown command %q\n", name)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: scarb <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.Name(), c.ShortHelp())
	}
}

// emitJSON writes v as one line of JSON to stdout, the newline-delimited
// output convention every subcommand but update follows.
func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

// sharedSetup loads the workspace config, logger and compiler version
// flag common to every subcommand.
func sharedSetup(fs *pflag.FlagSet, args []string) (cfgVal scarbconfig.Config, compilerVersion scarbid.Version, log *scarblog.Logger, err error) {
	compilerVersionStr := fs.String("compiler-version", "2.7.0", "Cairo compiler version to pin the standard library to")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfgVal, err = scarbconfig.Load()
	if err != nil {
		return
	}

	compilerVersion, err = scarbid.NewVersion(*compilerVersionStr)
	if err != nil {
		return
	}

	if *verbose {
		log = scarblog.New(os.Stderr)
	} else {
		log = scarblog.NewNop()
	}
	return
}
