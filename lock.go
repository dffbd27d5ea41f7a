// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scarb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/resolve"
)

// LockFileName is the name of the lockfile written beneath a workspace
// root (§4.F, §6.5).
const LockFileName = "Scarb.lock"

// ReadLockfile reads and decodes the lockfile at root/Scarb.lock. A
// missing lockfile is not an error; it returns (nil, nil), mirroring the
// teacher's readLock treating an absent lock.json as "no lock yet".
func ReadLockfile(root string) (*resolve.Lockfile, error) {
	path := filepath.Join(root, LockFileName)
	text, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	lf, err := resolve.Decode(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return lf, nil
}

// LockDiff is the set of differences between an existing lockfile and a
// freshly solved one, used for `scarb update`'s human-readable summary.
// Grounded on the teacher's txn_writer.go diffLocks/diffProjects/
// StringDiff trio, simplified from gps.LockedProject's branch/revision
// triple to a single semver + checksum pair.
type LockDiff struct {
	Add    []PackageDiff
	Remove []PackageDiff
	Modify []PackageDiff
}

// PackageDiff reports one package's before/after state in a lockfile
// diff.
type PackageDiff struct {
	Name            string
	PreviousVersion string
	CurrentVersion  string
}

func (d PackageDiff) String() string {
	switch {
	case d.PreviousVersion == "" && d.CurrentVersion != "":
		return fmt.Sprintf("+ %s v%s", d.Name, d.CurrentVersion)
	case d.PreviousVersion != "" && d.CurrentVersion == "":
		return fmt.Sprintf("- %s v%s", d.Name, d.PreviousVersion)
	default:
		return fmt.Sprintf("%s v%s -> v%s", d.Name, d.PreviousVersion, d.CurrentVersion)
	}
}

// DiffLockfiles compares an old lockfile (may be nil, meaning "no lock
// existed yet") against a new one and reports what changed, sorted by
// package name for determinism.
func DiffLockfiles(oldLock, newLock *resolve.Lockfile) *LockDiff {
	oldByName := map[string]resolve.LockedPackage{}
	if oldLock != nil {
		for _, p := range oldLock.Packages {
			oldByName[p.Name] = p
		}
	}
	newByName := map[string]resolve.LockedPackage{}
	if newLock != nil {
		for _, p := range newLock.Packages {
			newByName[p.Name] = p
		}
	}

	var diff LockDiff
	names := make([]string, 0, len(oldByName)+len(newByName))
	seen := map[string]bool{}
	for n := range oldByName {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for n := range newByName {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)

	for _, n := range names {
		oldP, hadOld := oldByName[n]
		newP, hasNew := newByName[n]
		switch {
		case !hadOld && hasNew:
			diff.Add = append(diff.Add, PackageDiff{Name: n, CurrentVersion: newP.Version})
		case hadOld && !hasNew:
			diff.Remove = append(diff.Remove, PackageDiff{Name: n, PreviousVersion: oldP.Version})
		case oldP.Version != newP.Version || oldP.Source != newP.Source:
			diff.Modify = append(diff.Modify, PackageDiff{Name: n, PreviousVersion: oldP.Version, CurrentVersion: newP.Version})
		}
	}

	if len(diff.Add) == 0 && len(diff.Remove) == 0 && len(diff.Modify) == 0 {
		return nil
	}
	return &diff
}

// Format renders a diff the way `scarb update` prints its summary.
func (d *LockDiff) Format() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range d.Add {
		fmt.Fprintln(&b, p.String())
	}
	for _, p := range d.Remove {
		fmt.Fprintln(&b, p.String())
	}
	for _, p := range d.Modify {
		fmt.Fprintln(&b, p.String())
	}
	return b.String()
}
