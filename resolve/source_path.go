package resolve

import (
	"context"
	"os"
	"path/filepath"

	"github.com/software-mansion/scarb/scarbid"
)

// PathSource resolves a single package living at a fixed filesystem path
// (§4.C). It never queries more than one version: the version is whatever
// the manifest at that path declares. Grounded on the teacher's notion of
// a directory-backed project (project.go's local root handling), simplified
// since path dependencies carry no history to walk.
type PathSource struct {
	id   scarbid.SourceId
	dir  string
	load func(dir string) (scarbid.PackageName, scarbid.Version, []Requirement, error)
}

// NewPathSource builds a PathSource rooted at dir. load is injected so this
// package does not need to import manifest directly.
func NewPathSource(dir string, load func(dir string) (scarbid.PackageName, scarbid.Version, []Requirement, error)) *PathSource {
	return &PathSource{id: scarbid.NewPathSourceId(dir), dir: dir, load: load}
}

func (s *PathSource) Name() string               { return "path+" + s.dir }
func (s *PathSource) SourceId() scarbid.SourceId { return s.id }

func (s *PathSource) Query(ctx context.Context, name scarbid.PackageName) ([]Summary, error) {
	pkgName, ver, deps, err := s.load(s.dir)
	if err != nil {
		return nil, err
	}
	if pkgName != name {
		return nil, nil
	}
	return []Summary{{
		ID:           scarbid.PackageId{Name: pkgName, Version: ver, Source: s.id},
		Dependencies: deps,
	}}, nil
}

func (s *PathSource) Download(ctx context.Context, id scarbid.PackageId) (PackagePath, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return PackagePath{}, err
	}
	abs, err := filepath.Abs(s.dir)
	if err != nil {
		return PackagePath{}, err
	}
	return PackagePath{Dir: abs}, nil
}

func (s *PathSource) IsYanked(ctx context.Context, id scarbid.PackageId) (bool, error) {
	return false, nil
}
