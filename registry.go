package scarb

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/manifest"
	"github.com/software-mansion/scarb/resolve"
	"github.com/software-mansion/scarb/scarbconfig"
	"github.com/software-mansion/scarb/scarbid"
)

// BuildRegistry wires one resolve.Registry out of every source a
// workspace's members can possibly depend on: a PathSource per workspace
// member and per path dependency a member declares (so local dependencies
// resolve without touching the network), a GitSource per distinct git dependency URL+ref, a single
// RegistrySource per distinct registry URL, and the embedded standard
// library source. Grounded on the teacher's Ctx.SourceManager, generalized
// from one gps.SourceMgr rooted at $GOPATH to a Registry fed by the
// workspace's own dependency graph.
func BuildRegistry(ws *Workspace, cfg scarbconfig.Config, creds *RegistryCredentials, compilerVersion scarbid.Version) (*resolve.Registry, error) {
	reg := resolve.NewRegistry()

	for _, m := range ws.Members {
		dir := filepath.Dir(m.Path)
		reg.AddSource(resolve.NewPathSource(dir, pathLoader))
	}

	seenGit := map[string]bool{}
	seenRegistry := map[string]bool{}

	for _, m := range ws.Members {
		for _, deps := range []map[scarbid.PackageName]manifest.Dependency{m.Dependencies, m.DevDependencies} {
			for _, dep := range deps {
				if dep.Git != "" {
					key := dep.Git + "|" + dep.GitRef.String()
					if seenGit[key] {
						continue
					}
					seenGit[key] = true
					src, err := resolve.NewGitSource(dep.Git, dep.GitRef, cfg.GitCacheDir(), pathLoader)
					if err != nil {
						return nil, errors.Wrapf(err, "git dependency %s", dep.Git)
					}
					reg.AddSource(src)
					continue
				}
				if dep.Path != "" {
					dir := dep.Path
					if !filepath.IsAbs(dir) {
						dir = filepath.Join(filepath.Dir(m.Path), dep.Path)
					}
					reg.AddSource(resolve.NewPathSource(dir, pathLoader))
					continue
				}

				url := dep.Registry
				if url == "" {
					url = "https://scarbs.xyz"
				}
				if seenRegistry[url] {
					continue
				}
				seenRegistry[url] = true
				token := ""
				if creds != nil {
					token = creds.TokenFor(url)
				}
				if token == "" {
					token = cfg.RegistryAuthToken
				}
				src, err := resolve.NewRegistrySource(url, token, cfg.RegistryCacheDir(), cfg.NetTimeout)
				if err != nil {
					return nil, errors.Wrapf(err, "registry %s", url)
				}
				reg.AddSource(src)
			}
		}
	}

	reg.AddSource(resolve.NewStandardLibSource(compilerVersion, cfg.StdlibCacheDir(compilerVersion.String())))

	return reg, nil
}

// pathLoader adapts manifest.LoadRaw+Canonicalize to the
// func(dir string) (PackageName, Version, []Requirement, error) contract
// resolve.PathSource and resolve.GitSource both need, so that resolve
// does not import manifest; this package already imports both.
func pathLoader(dir string) (scarbid.PackageName, scarbid.Version, []resolve.Requirement, error) {
	mp := filepath.Join(dir, manifest.ManifestFileName)
	doc, err := manifest.LoadRaw(mp)
	if err != nil {
		return "", scarbid.Version{}, nil, err
	}
	m, err := manifest.Canonicalize(mp, doc, nil, "")
	if err != nil {
		return "", scarbid.Version{}, nil, err
	}
	return m.Package.Name, m.Package.Version, requirementsOf(m), nil
}

// requirementsOf flattens a canonical manifest's dependency tables into
// the Requirement slice the solver consumes, resolving each dependency's
// SourceId the way §4.B/§4.C's split between manifest intent and resolved
// source identity intends.
func requirementsOf(m *manifest.Manifest) []resolve.Requirement {
	var reqs []resolve.Requirement
	for _, deps := range []struct {
		m   map[scarbid.PackageName]manifest.Dependency
		dev bool
	}{
		{m.Dependencies, false},
		{m.DevDependencies, true},
	} {
		for name, dep := range deps.m {
			sid, err := sourceIDOf(m.Path, dep)
			if err != nil {
				continue
			}
			reqs = append(reqs, resolve.Requirement{
				Name:            name,
				VersionReq:      dep.Requirement,
				Source:          sid,
				Dev:             deps.dev,
				DefaultFeatures: dep.DefaultFeatures,
				Features:        dep.Features,
			})
		}
	}
	return reqs
}

func sourceIDOf(manifestPath string, dep manifest.Dependency) (scarbid.SourceId, error) {
	switch {
	case dep.Path != "":
		abs := dep.Path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(filepath.Dir(manifestPath), dep.Path)
		}
		return scarbid.NewPathSourceId(abs), nil
	case dep.Git != "":
		return scarbid.NewGitSourceId(dep.Git, dep.GitRef)
	default:
		url := dep.Registry
		if url == "" {
			url = "https://scarbs.xyz"
		}
		return scarbid.NewRegistrySourceId(url)
	}
}
