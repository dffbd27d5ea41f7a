package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/software-mansion/scarb/scarbid"
)

func parseAndCanonicalize(t *testing.T, text string) *Manifest {
	t.Helper()
	doc, err := ParseTOML("Scarb.toml", []byte(text))
	require.NoError(t, err)
	m, err := Canonicalize("Scarb.toml", doc, nil, "")
	require.NoError(t, err)
	return m
}

func TestCanonicalizeMinimalPackage(t *testing.T) {
	m := parseAndCanonicalize(t, `
[package]
name = "hello"
version = "0.1.0"
`)
	require.Equal(t, "hello", m.Package.Name.String())
	require.Equal(t, "0.1.0", m.Package.Version.String())
	require.Equal(t, "2023_10", m.Package.Edition)
	require.Len(t, m.Targets, 3, "implicit lib + synthesized unit/integration test targets")
	require.Equal(t, TargetKindLib, m.Targets[0].Kind)
}

func TestCanonicalizeRejectsBadName(t *testing.T) {
	doc, err := ParseTOML("Scarb.toml", []byte(`
[package]
name = "Hello"
version = "0.1.0"
`))
	require.NoError(t, err)
	_, err = Canonicalize("Scarb.toml", doc, nil, "")
	require.Error(t, err)
}

func TestDependencyForms(t *testing.T) {
	m := parseAndCanonicalize(t, `
[package]
name = "hello"
version = "0.1.0"

[dependencies]
simple = "1.2.3"

[dependencies.complex]
version = "2.0"
features = ["f1", "f2"]
default-features = false

[dependencies.pathdep]
path = "../other"
`)
	require.Len(t, m.Dependencies, 3)
	require.True(t, m.Dependencies["simple"].Requirement.Satisfies(scarbid.MustVersion("1.2.9")))
	complex := m.Dependencies["complex"]
	require.Equal(t, []string{"f1", "f2"}, complex.Features)
	require.False(t, complex.DefaultFeatures)
	require.Equal(t, "../other", m.Dependencies["pathdep"].Path)
}

func TestCairoPluginExclusivity(t *testing.T) {
	doc, err := ParseTOML("Scarb.toml", []byte(`
[package]
name = "macro"
version = "0.1.0"

[[target.cairo-plugin]]

[lib]
`))
	require.NoError(t, err)
	_, err = Canonicalize("Scarb.toml", doc, nil, "")
	require.Error(t, err)
}

func TestFeatureCycleRejected(t *testing.T) {
	doc, err := ParseTOML("Scarb.toml", []byte(`
[package]
name = "hello"
version = "0.1.0"

[features]
a = ["b"]
b = ["a"]
`))
	require.NoError(t, err)
	_, err = Canonicalize("Scarb.toml", doc, nil, "")
	require.Error(t, err)
}

func TestProfileOverlayMerge(t *testing.T) {
	doc, err := ParseTOML("Scarb.toml", []byte(`
[package]
name = "hello"
version = "0.1.0"

[cairo]
sierra-replace-ids = true

[profile.custom]
inherits = "release"
merge-strategy = "merge"

[profile.custom.cairo]
panic-backtrace = true
`))
	require.NoError(t, err)
	m, err := Canonicalize("Scarb.toml", doc, nil, "custom")
	require.NoError(t, err)
	require.Equal(t, true, m.CompilerConfig["panic-backtrace"], "set by the custom profile")
	require.Equal(t, true, m.CompilerConfig["enable-gas"], "kept from release by the merge strategy")
}
