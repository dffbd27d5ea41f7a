package manifest

import "github.com/pkg/errors"

var errNotWorkspaceRoot = errors.New("manifest does not declare [workspace]")

// WorkspaceConfig is the `[workspace]` table of a workspace-root manifest
// (§6.1, §6.5).
type WorkspaceConfig struct {
	Members        []string
	ExcludeMembers []string
	// Package carries fields ("version", "edition", "cairo-version", ...)
	// that members may inherit via `<field>.workspace = true`.
	Package rawDoc
	// AllowPrebuiltPlugins is the `[tool.scarb].allow-prebuilt-plugins`
	// opt-in list of §6.7, read from the workspace root only.
	AllowPrebuiltPlugins []string
}

// ParseWorkspaceConfigForDiscovery extracts the `[workspace]` table of doc
// for member-glob expansion, used by the root workspace orchestrator
// before any per-member canonicalization happens.
func ParseWorkspaceConfigForDiscovery(doc RawDoc) (WorkspaceConfig, error) {
	tbl, ok := doc.table("workspace")
	if !ok {
		return WorkspaceConfig{}, errNotWorkspaceRoot
	}
	return parseWorkspaceConfig(tbl), nil
}

func parseWorkspaceConfig(raw rawDoc) WorkspaceConfig {
	wc := WorkspaceConfig{
		Members:        raw.strSlice("members"),
		ExcludeMembers: raw.strSlice("exclude"),
	}
	if pkg, ok := raw.table("package"); ok {
		wc.Package = pkg
	}
	return wc
}

// inheritPackageField resolves a member's `[package]` field that may carry
// the `workspace = true` marker, falling back to the workspace root's
// `[workspace.package]` table (§4.B rule 1).
func inheritPackageField(memberVal interface{}, root rawDoc, field string) (interface{}, bool) {
	if isWorkspaceMarker(memberVal) {
		if root == nil {
			return nil, false
		}
		v, ok := root[field]
		return v, ok
	}
	return memberVal, memberVal != nil
}
