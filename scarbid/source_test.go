package scarbid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceIdCanonicalizesTrailingSlash(t *testing.T) {
	a, err := NewRegistrySourceId("https://registry.example.com/pkg/")
	require.NoError(t, err)
	b, err := NewRegistrySourceId("https://registry.example.com/pkg")
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestGitSourceIdRevTakesPrecedence(t *testing.T) {
	a, err := NewGitSourceId("https://example.com/x.git", GitReference{Branch: "main", Rev: "abc123"})
	require.NoError(t, err)
	b, err := NewGitSourceId("https://example.com/x.git", GitReference{Tag: "v1.0.0", Rev: "abc123"})
	require.NoError(t, err)
	require.True(t, a.Equal(b), "two refs resolving to the same commit must be equal")
}

func TestGitSourceIdDiffersWithoutResolvedRev(t *testing.T) {
	a, err := NewGitSourceId("https://example.com/x.git", GitReference{Branch: "main"})
	require.NoError(t, err)
	b, err := NewGitSourceId("https://example.com/x.git", GitReference{Branch: "dev"})
	require.NoError(t, err)
	require.False(t, a.Equal(b))
}

func TestPackageNameValidation(t *testing.T) {
	_, err := NewPackageName("Valid")
	require.Error(t, err, "uppercase is rejected")

	_, err = NewPackageName("fn")
	require.Error(t, err, "keywords are rejected")

	n, err := NewPackageName("my_pkg_2")
	require.NoError(t, err)
	require.Equal(t, "my_pkg_2", n.String())
}
