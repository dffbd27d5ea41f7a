package resolve

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

var fingerprintSkipNames = map[string]bool{
	".":    true,
	"..":   true,
	".git": true,
	".hg":  true,
	".svn": true,
}

// Fingerprint returns a deterministic hash of a package's source tree,
// used in place of a registry checksum for path and git sources whose
// content can change between resolves without a version bump (§4.C, §4.H
// unit fingerprinting). Grounded on the teacher's
// internal/fs.HashFromNode: "hash every pathname plus file content,
// skipping VCS directories", but walked depth-first in lexical order with
// github.com/karrick/godirwalk instead of hand-rolled Lstat/Readdirnames
// recursion, since godirwalk is exactly the directory-walking library the
// rest of the corpus already depends on.
func Fingerprint(root string) (string, error) {
	h := sha256.New()
	root = filepath.Clean(root)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if fingerprintSkipNames[filepath.Base(rel)] {
				return filepath.SkipDir
			}

			h.Write([]byte(filepath.ToSlash(rel)))

			if de.IsSymlink() {
				target, err := os.Readlink(path)
				if err != nil {
					return errors.Wrap(err, "readlink")
				}
				h.Write([]byte(target))
				return nil
			}
			if de.IsDir() {
				return nil
			}

			f, err := os.Open(path)
			if err != nil {
				return errors.Wrap(err, "open")
			}
			defer f.Close()
			if _, err := io.Copy(h, f); err != nil {
				return errors.Wrap(err, "read")
			}
			return nil
		},
		Unsorted: false,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FingerprintInputs folds a sorted list of named sub-fingerprints (e.g.
// one unit's set of upstream unit fingerprints) into a single digest, used
// by the compilation-unit planner to avoid re-hashing whole subtrees for
// every downstream unit.
func FingerprintInputs(named map[string]string) string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
		h.Write([]byte(named[n]))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
