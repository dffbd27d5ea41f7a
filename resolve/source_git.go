package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/vcs"
	shutil "github.com/termie/go-shutil"

	"github.com/software-mansion/scarb/scarbid"
)

// GitSource clones and resolves a single git repository at a branch, tag,
// or exact rev (§4.C). Grounded on the teacher's gitSource/vcs_repo.go
// pair: a shared repo clone guarded by a mutex, cloned lazily into a
// process-global cache directory, with exportVersionTo copying a checked
// out tree out to a target directory via github.com/termie/go-shutil
// rather than leaving call sites to walk the working tree themselves.
type GitSource struct {
	id       scarbid.SourceId
	repoURL  string
	ref      scarbid.GitReference
	cacheDir string
	load     func(dir string) (scarbid.PackageName, scarbid.Version, []Requirement, error)

	mu     sync.Mutex
	repo   vcs.Repo
	synced bool
}

// NewGitSource builds a GitSource cloning repoURL into cacheDir (keyed by
// repo URL, per §6.5's process-global git/ cache).
func NewGitSource(repoURL string, ref scarbid.GitReference, cacheDir string, load func(dir string) (scarbid.PackageName, scarbid.Version, []Requirement, error)) (*GitSource, error) {
	local := filepath.Join(cacheDir, sanitizeRepoDir(repoURL))
	r, err := vcs.NewRepo(repoURL, local)
	if err != nil {
		return nil, fmt.Errorf("git source %s: %w", repoURL, err)
	}
	id, err := scarbid.NewGitSourceId(repoURL, ref)
	if err != nil {
		return nil, err
	}
	return &GitSource{
		id:       id,
		repoURL:  repoURL,
		ref:      ref,
		cacheDir: local,
		load:     load,
		repo:     r,
	}, nil
}

func sanitizeRepoDir(url string) string {
	r := strings.NewReplacer("://", "-", "/", "-", "@", "-", ":", "-")
	return r.Replace(url)
}

func (s *GitSource) Name() string               { return "git+" + s.repoURL }
func (s *GitSource) SourceId() scarbid.SourceId { return s.id }

func (s *GitSource) ensureSynced(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.synced {
		return nil
	}
	if !s.repo.CheckLocal() {
		if err := s.repo.Get(); err != nil {
			return fmt.Errorf("failed to clone %s: %w", s.repoURL, err)
		}
	} else {
		if err := s.repo.Update(); err != nil {
			return fmt.Errorf("failed to update %s: %w", s.repoURL, err)
		}
	}
	s.synced = true
	return nil
}

func (s *GitSource) resolvedRev() (string, error) {
	switch {
	case s.ref.Rev != "":
		return s.ref.Rev, nil
	case s.ref.Tag != "":
		return s.ref.Tag, nil
	case s.ref.Branch != "":
		return s.ref.Branch, nil
	default:
		return "", nil // default branch
	}
}

// Query checks out the requested ref and reads the single package manifest
// it contains; a git source exposes exactly one version, the one pinned by
// its ref (§4.C, mirroring scarbid.SourceId's rev-takes-precedence rule).
func (s *GitSource) Query(ctx context.Context, name scarbid.PackageName) ([]Summary, error) {
	if err := s.ensureSynced(ctx); err != nil {
		return nil, err
	}
	rev, err := s.resolvedRev()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rev != "" {
		if err := s.repo.UpdateVersion(rev); err != nil {
			return nil, fmt.Errorf("unknown git ref %q for %s: %w", rev, s.repoURL, err)
		}
	}

	pkgName, pkgVersion, deps, err := s.load(s.repo.LocalPath())
	if err != nil {
		return nil, err
	}
	if pkgName != name {
		return nil, nil
	}

	resolvedRev, err := s.repo.Version()
	if err != nil {
		return nil, err
	}
	sid, err := scarbid.NewGitSourceId(s.repoURL, scarbid.GitReference{Branch: s.ref.Branch, Tag: s.ref.Tag, Rev: resolvedRev})
	if err != nil {
		return nil, err
	}
	return []Summary{{
		ID:           scarbid.PackageId{Name: pkgName, Version: pkgVersion, Source: sid},
		Dependencies: deps,
	}}, nil
}

// Download copies the shared clone's current working tree into a fresh
// temporary directory, leaving the shared clone itself untouched.
func (s *GitSource) Download(ctx context.Context, id scarbid.PackageId) (PackagePath, error) {
	if err := s.ensureSynced(ctx); err != nil {
		return PackagePath{}, err
	}
	tmp, err := os.MkdirTemp("", "scarb-git-export-*")
	if err != nil {
		return PackagePath{}, err
	}
	// CopyTree creates its destination and refuses one that exists.
	dest := filepath.Join(tmp, "src")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := shutil.CopyTree(s.repo.LocalPath(), dest, nil); err != nil {
		return PackagePath{}, fmt.Errorf("export %s: %w", s.repoURL, err)
	}
	return PackagePath{Dir: dest}, nil
}

func (s *GitSource) IsYanked(ctx context.Context, id scarbid.PackageId) (bool, error) {
	return false, nil
}
