package manifest

import (
	"os"

	"github.com/pkg/errors"
)

// LoadRaw reads and parses the manifest at path into its generic TOML
// document form, without canonicalizing it -- the first half of §4.B's
// `parse` operation.
func LoadRaw(path string) (rawDoc, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return ParseTOML(path, text)
}

// IsWorkspaceRoot reports whether a parsed document declares `[workspace]`.
func IsWorkspaceRoot(doc rawDoc) bool {
	_, ok := doc.table("workspace")
	return ok
}

// RawDoc is the exported alias used by callers outside this package (e.g.
// the root workspace orchestrator) that need to pass a parsed document
// between LoadRaw and Canonicalize without reaching into package
// internals.
type RawDoc = rawDoc
