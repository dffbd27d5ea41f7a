package manifest

import (
	"github.com/pkg/errors"
	"github.com/software-mansion/scarb/scarbid"
)

const ManifestFileName = "Scarb.toml"

// PackageMeta is the canonicalized `[package]` table.
type PackageMeta struct {
	Name           scarbid.PackageName
	Version        scarbid.Version
	Edition        string
	CairoVersion   scarbid.VersionReq
}

// Manifest is the canonical, fully-merged form of one package's
// Scarb.toml: the result of `canonicalize` (§4.B). It is always
// internally consistent -- further validation never has to be repeated.
type Manifest struct {
	Path            string
	Package         PackageMeta
	Dependencies    map[scarbid.PackageName]Dependency
	DevDependencies map[scarbid.PackageName]Dependency
	Features        FeatureSet
	Targets         []Target
	CompilerConfig  map[string]interface{}
	Scripts         map[string]string
	Tool            map[string]map[string]interface{}
	Patch           map[string]map[scarbid.PackageName]Dependency
	Workspace       *WorkspaceConfig // non-nil only for the workspace root
}

var knownEditions = map[string]bool{"2023_01": true, "2023_10": true, "2024_07": true}

// Canonicalize implements §4.B's `canonicalize(toml, workspace_root?,
// active_profile) -> Manifest`. workspaceRoot is nil when this manifest IS
// the workspace root, or when the package is a standalone (non-workspace)
// project.
func Canonicalize(path string, doc rawDoc, workspaceRoot rawDoc, activeProfile string) (*Manifest, error) {
	pkgTbl, ok := doc.table("package")
	if !ok {
		return nil, semErr(path, "missing required [package] table")
	}

	var rootPkg rawDoc
	if workspaceRoot != nil {
		if wtbl, ok := workspaceRoot.table("workspace"); ok {
			if p, ok := wtbl.table("package"); ok {
				rootPkg = p
			}
		}
	}

	name, err := canonicalizeName(path, pkgTbl)
	if err != nil {
		return nil, err
	}
	ver, err := canonicalizeVersion(path, pkgTbl, rootPkg)
	if err != nil {
		return nil, err
	}
	edition, err := canonicalizeEdition(path, pkgTbl, rootPkg)
	if err != nil {
		return nil, err
	}
	cairoReq, err := canonicalizeCairoVersion(path, pkgTbl, rootPkg)
	if err != nil {
		return nil, err
	}

	deps, err := parseDependencyTable(tableOrEmpty(doc, "dependencies"), DependencyKindNormal)
	if err != nil {
		return nil, errors.WithMessagef(err, "in %s", path)
	}
	devDeps, err := parseDependencyTable(tableOrEmpty(doc, "dev-dependencies"), DependencyKindDev)
	if err != nil {
		return nil, errors.WithMessagef(err, "in %s", path)
	}

	features, err := parseFeatures(tableOrEmpty(doc, "features"))
	if err != nil {
		return nil, errors.WithMessagef(err, "in %s", path)
	}

	targets, err := canonicalizeTargets(path, doc)
	if err != nil {
		return nil, err
	}

	// Rule 1: [cairo] and [profile] are inherited from the workspace root
	// automatically and ignored in members.
	cairoSource := doc
	profileSource := doc
	if workspaceRoot != nil {
		cairoSource = workspaceRoot
		profileSource = workspaceRoot
	}
	cairoBase := tableOrEmpty(cairoSource, "cairo")

	profiles, err := allProfiles(profileDefs(profileSource))
	if err != nil {
		return nil, errors.WithMessagef(err, "in %s", path)
	}
	if activeProfile == "" {
		activeProfile = "dev"
	}
	profile, ok := profiles[activeProfile]
	if !ok {
		return nil, semErr(path, "unknown profile %q", activeProfile)
	}

	compilerConfig := map[string]interface{}{}
	for k, v := range cairoBase {
		compilerConfig[k] = v
	}
	for k, v := range profile.Cairo {
		compilerConfig[k] = v
	}

	tool, err := canonicalizeTool(doc, workspaceRoot)
	if err != nil {
		return nil, err
	}
	for ns, tbl := range profile.Tool {
		if tool[ns] == nil {
			tool[ns] = map[string]interface{}{}
		}
		for k, v := range tbl {
			tool[ns][k] = v
		}
	}

	scripts := map[string]string{}
	if s, ok := doc.table("scripts"); ok {
		for k, v := range s {
			if str, ok := v.(string); ok {
				scripts[k] = str
			}
		}
	}

	patch, err := canonicalizePatch(doc)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Path:            path,
		Package:         PackageMeta{Name: name, Version: ver, Edition: edition, CairoVersion: cairoReq},
		Dependencies:    deps,
		DevDependencies: devDeps,
		Features:        features,
		Targets:         targets,
		CompilerConfig:  compilerConfig,
		Scripts:         scripts,
		Tool:            tool,
		Patch:           patch,
	}

	if wtbl, ok := doc.table("workspace"); ok {
		wc := parseWorkspaceConfig(wtbl)
		if sc, ok := tool["scarb"]; ok {
			if arr, ok := sc["allow-prebuilt-plugins"].([]interface{}); ok {
				for _, e := range arr {
					if s, ok := e.(string); ok {
						wc.AllowPrebuiltPlugins = append(wc.AllowPrebuiltPlugins, s)
					}
				}
			}
		}
		m.Workspace = &wc
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func tableOrEmpty(d rawDoc, key string) rawDoc {
	t, ok := d.table(key)
	if !ok {
		return rawDoc{}
	}
	return t
}

func profileDefs(doc rawDoc) map[string]rawDoc {
	out := map[string]rawDoc{}
	if tbl, ok := doc.table("profile"); ok {
		for name, v := range tbl {
			if m, ok := v.(map[string]interface{}); ok {
				out[name] = rawDoc(m)
			}
		}
	}
	return out
}

func canonicalizeName(path string, pkgTbl rawDoc) (scarbid.PackageName, error) {
	s, ok := pkgTbl.str("name")
	if !ok {
		return "", semErr(path, "[package] is missing required field \"name\"")
	}
	n, err := scarbid.NewPackageName(s)
	if err != nil {
		return "", &SemanticsError{Path: path, Err: err}
	}
	return n, nil
}

func canonicalizeVersion(path string, pkgTbl, rootPkg rawDoc) (scarbid.Version, error) {
	raw, present := pkgTbl["version"]
	if !present {
		return scarbid.Version{}, semErr(path, "[package] is missing required field \"version\"")
	}
	v, ok := inheritPackageField(raw, rootPkg, "version")
	if !ok {
		return scarbid.Version{}, semErr(path, "package.version = workspace = true, but no workspace root version is set")
	}
	s, ok := v.(string)
	if !ok {
		return scarbid.Version{}, semErr(path, "package.version must be a string")
	}
	ver, err := scarbid.NewVersion(s)
	if err != nil {
		return scarbid.Version{}, &SemanticsError{Path: path, Err: err}
	}
	return ver, nil
}

func canonicalizeEdition(path string, pkgTbl, rootPkg rawDoc) (string, error) {
	raw, present := pkgTbl["edition"]
	if !present {
		return "2023_10", nil
	}
	v, ok := inheritPackageField(raw, rootPkg, "edition")
	if !ok {
		return "", semErr(path, "package.edition = workspace = true, but no workspace root edition is set")
	}
	s, ok := v.(string)
	if !ok {
		return "", semErr(path, "package.edition must be a string")
	}
	if !knownEditions[s] {
		return "", semErr(path, "unknown edition %q", s)
	}
	return s, nil
}

func canonicalizeCairoVersion(path string, pkgTbl, rootPkg rawDoc) (scarbid.VersionReq, error) {
	raw, present := pkgTbl["cairo-version"]
	if !present {
		return scarbid.AnyVersionReq(), nil
	}
	v, ok := inheritPackageField(raw, rootPkg, "cairo-version")
	if !ok {
		return scarbid.VersionReq{}, semErr(path, "package.cairo-version = workspace = true, but no workspace root cairo-version is set")
	}
	s, ok := v.(string)
	if !ok {
		return scarbid.VersionReq{}, semErr(path, "package.cairo-version must be a string")
	}
	req, err := scarbid.NewVersionReq(s)
	if err != nil {
		return scarbid.VersionReq{}, &SemanticsError{Path: path, Err: err}
	}
	return req, nil
}

// canonicalizeTool merges a member's own `[tool.*]` tables with any
// workspace-root tables explicitly requested via a per-key
// `workspace = true` marker (§4.B rule 1: "[tool] inheritance is explicit
// (per-key) only").
func canonicalizeTool(doc, workspaceRoot rawDoc) (map[string]map[string]interface{}, error) {
	out := map[string]map[string]interface{}{}
	toolTbl, ok := doc.table("tool")
	if !ok {
		return out, nil
	}
	for ns, v := range toolTbl {
		sub, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if isWorkspaceMarker(sub) {
			if workspaceRoot == nil {
				return nil, errors.Errorf("[tool.%s] workspace = true, but this is not a workspace member", ns)
			}
			wtool, _ := workspaceRoot.table("tool")
			if rootSub, ok := wtool.table(ns); ok {
				out[ns] = map[string]interface{}(rootSub)
			}
			continue
		}
		out[ns] = sub
	}
	return out, nil
}

func canonicalizePatch(doc rawDoc) (map[string]map[scarbid.PackageName]Dependency, error) {
	tbl, ok := doc.table("patch")
	if !ok {
		return nil, nil
	}
	out := map[string]map[scarbid.PackageName]Dependency{}
	for source, v := range tbl {
		sub, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		deps, err := parseDependencyTable(rawDoc(sub), DependencyKindNormal)
		if err != nil {
			return nil, err
		}
		out[source] = deps
	}
	return out, nil
}

// validate enforces the remaining §4.B invariants that cut across
// multiple sections: the cairo-plugin exclusivity rule and unique target
// names.
func (m *Manifest) validate() error {
	seenNames := map[string]bool{}
	var hasPlugin, hasOther bool
	for _, t := range m.Targets {
		if seenNames[t.Name] {
			return semErr(m.Path, "duplicate target name %q", t.Name)
		}
		seenNames[t.Name] = true
		if t.Kind == TargetKindCairoPlugin {
			hasPlugin = true
		} else {
			hasOther = true
		}
	}
	if hasPlugin && hasOther {
		return semErr(m.Path, "a cairo-plugin target must be the only target in its package")
	}
	if hasPlugin && (len(m.Dependencies) > 0 || len(m.DevDependencies) > 0) {
		return semErr(m.Path, "a cairo-plugin package may not declare dependencies")
	}
	return nil
}
