// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scarb

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/resolve"
)

// Artifact is one file a compilation unit produced, destined for a fixed
// path beneath the workspace target directory (§4.J "artifact
// placement").
type Artifact struct {
	// TempPath is where the unit actually wrote its output (e.g. inside a
	// unit-private scratch dir).
	TempPath string
	// DestPath is the final, workspace-relative location the artifact is
	// placed at.
	DestPath string
}

// ArtifactCollisionError reports two units trying to place an artifact at
// the same destination path, which would silently clobber one of them.
type ArtifactCollisionError struct {
	DestPath string
}

func (e *ArtifactCollisionError) Error() string {
	return "artifact collision: two compilation units both produced " + e.DestPath
}

// SafeWriter transactionalizes writes of the lockfile and build artifacts
// into a pseudo-atomic action with rollback, after the teacher's
// SafeWriter: existing files are moved aside, the new ones are written in
// place, and the moved-aside files are restored if any write fails
// partway through.
type SafeWriter struct {
	Lockfile  *resolve.Lockfile
	Artifacts []Artifact
}

// Write commits the prepared lockfile and artifacts beneath root. It
// first checks for destination-path collisions among Artifacts (§4.J),
// then moves the old lockfile aside, writes the new one, and copies every
// artifact into place; on any failure it restores whatever it had moved
// out before returning the error.
func (sw *SafeWriter) Write(root string) error {
	if err := checkArtifactCollisions(sw.Artifacts); err != nil {
		return err
	}

	type pathpair struct{ from, to string }
	var restore []pathpair
	var failErr error

	lockPath := filepath.Join(root, LockFileName)
	var lockBak string
	if sw.Lockfile != nil {
		if _, err := os.Stat(lockPath); err == nil {
			lockBak = lockPath + ".orig"
			if err := renameWithFallback(lockPath, lockBak); err != nil {
				return errors.Wrap(err, "backing up existing lockfile")
			}
			restore = append(restore, pathpair{from: lockBak, to: lockPath})
		}

		body, err := resolve.Encode(sw.Lockfile)
		if err != nil {
			failErr = errors.Wrap(err, "encoding lockfile")
			goto fail
		}
		if err := os.WriteFile(lockPath, body, 0o644); err != nil {
			failErr = errors.Wrap(err, "writing lockfile")
			goto fail
		}
	}

	for _, a := range sw.Artifacts {
		destAbs := filepath.Join(root, a.DestPath)
		if err := os.MkdirAll(filepath.Dir(destAbs), 0o755); err != nil {
			failErr = errors.Wrapf(err, "preparing artifact directory for %s", a.DestPath)
			goto fail
		}
		if _, err := os.Stat(destAbs); err == nil {
			bak := destAbs + ".orig"
			if err := renameWithFallback(destAbs, bak); err != nil {
				failErr = errors.Wrapf(err, "backing up existing artifact %s", a.DestPath)
				goto fail
			}
			restore = append(restore, pathpair{from: bak, to: destAbs})
		}
		if err := copyFileNoRemove(a.TempPath, destAbs); err != nil {
			failErr = errors.Wrapf(err, "placing artifact %s", a.DestPath)
			goto fail
		}
	}

	if lockBak != "" {
		os.Remove(lockBak)
	}
	for _, pair := range restore {
		if pair.from != lockBak {
			os.RemoveAll(pair.from)
		}
	}
	return nil

fail:
	for _, pair := range restore {
		renameWithFallback(pair.from, pair.to)
	}
	return failErr
}

// checkArtifactCollisions rejects a batch where two artifacts would land
// at the same destination path, rather than letting the second silently
// overwrite the first.
func checkArtifactCollisions(artifacts []Artifact) error {
	seen := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		clean := filepath.Clean(a.DestPath)
		if seen[clean] {
			return &ArtifactCollisionError{DestPath: clean}
		}
		seen[clean] = true
	}
	return nil
}
