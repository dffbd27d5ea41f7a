package scarbid

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind discriminates the four source variants the core understands.
// See §3 and §4.C.
type SourceKind uint8

const (
	// SourceKindPath is a local filesystem dependency.
	SourceKindPath SourceKind = iota
	// SourceKindGit is a git repository dependency, pinned by branch, tag
	// or revision.
	SourceKindGit
	// SourceKindRegistry is an HTTP-indexed registry dependency.
	SourceKindRegistry
	// SourceKindStandardLib is the reserved source for the injected core
	// library (§4.E rule 4).
	SourceKindStandardLib
)

func (k SourceKind) String() string {
	switch k {
	case SourceKindPath:
		return "path"
	case SourceKindGit:
		return "git"
	case SourceKindRegistry:
		return "registry"
	case SourceKindStandardLib:
		return "std"
	default:
		return "unknown"
	}
}

// GitReference identifies which of branch, tag, or rev was used to select a
// git checkout. Once resolved, Rev always carries the concrete commit hash;
// per §4.A, Rev takes precedence over Branch/Tag for SourceId equality.
type GitReference struct {
	Branch string
	Tag    string
	Rev    string
}

func (r GitReference) String() string {
	switch {
	case r.Rev != "":
		return "rev=" + r.Rev
	case r.Tag != "":
		return "tag=" + r.Tag
	case r.Branch != "":
		return "branch=" + r.Branch
	default:
		return "HEAD"
	}
}

// SourceId is a canonical, equality-comparable (URL, kind) pair. Two
// SourceIds referring to the same logical source must compare equal after
// canonicalization (§4.A), regardless of superficial differences like a
// trailing slash or un-normalized percent-encoding in the URL.
type SourceId struct {
	Kind SourceKind
	URL  string // canonicalized
	Git  GitReference
}

// NewPathSourceId builds the SourceId for a local-path dependency. Path
// source ids are not shared across packages with different roots, so the
// URL is simply the absolute, cleaned path turned into a file:// URL.
func NewPathSourceId(absPath string) SourceId {
	return SourceId{Kind: SourceKindPath, URL: "file://" + canonicalizePath(absPath)}
}

// NewGitSourceId builds the SourceId for a git dependency. ref should have
// exactly one of Branch/Tag/Rev set prior to resolution; GitSource fills
// in Rev with the resolved commit hash once the ref has been dereferenced
// (§4.C).
func NewGitSourceId(rawURL string, ref GitReference) (SourceId, error) {
	u, err := canonicalizeURL(rawURL)
	if err != nil {
		return SourceId{}, err
	}
	return SourceId{Kind: SourceKindGit, URL: u, Git: ref}, nil
}

// NewRegistrySourceId builds the SourceId for an HTTP registry.
func NewRegistrySourceId(rawURL string) (SourceId, error) {
	u, err := canonicalizeURL(rawURL)
	if err != nil {
		return SourceId{}, err
	}
	return SourceId{Kind: SourceKindRegistry, URL: u}, nil
}

// StandardLibSourceId is the single reserved SourceId for the core library.
var StandardLibSourceId = SourceId{Kind: SourceKindStandardLib, URL: "std://core"}

// Equal reports canonical equality, applying the git rev-takes-precedence
// rule of §4.A: two git SourceIds with the same URL and resolved Rev are
// equal even if their recorded Branch/Tag differ (e.g. "main" moved, but we
// already pinned the commit it used to point at).
func (s SourceId) Equal(o SourceId) bool {
	if s.Kind != o.Kind || s.URL != o.URL {
		return false
	}
	if s.Kind != SourceKindGit {
		return true
	}
	if s.Git.Rev != "" && o.Git.Rev != "" {
		return s.Git.Rev == o.Git.Rev
	}
	return s.Git == o.Git
}

func (s SourceId) String() string {
	switch s.Kind {
	case SourceKindGit:
		return fmt.Sprintf("git+%s?%s", s.URL, s.Git)
	case SourceKindPath:
		return s.URL
	case SourceKindStandardLib:
		return s.URL
	default:
		return fmt.Sprintf("registry+%s", s.URL)
	}
}

// canonicalizeURL trims a trailing slash and normalizes percent-encoding,
// per §4.A.
func canonicalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", raw, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	// Re-parsing and re-stringifying normalizes percent-encoding, since
	// url.URL always emits the canonical %XX form.
	return u.String(), nil
}

func canonicalizePath(p string) string {
	return strings.TrimSuffix(filepathToSlash(p), "/")
}
