package scarbid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCompare(t *testing.T) {
	a := MustVersion("1.2.3")
	b := MustVersion("1.2.4")
	require.True(t, a.LessThan(b))
	require.False(t, b.LessThan(a))
	require.True(t, a.Equal(MustVersion("1.2.3")))
}

// TestZeroDotXCompatibility documents the deliberate divergence from
// strict semver described in §4.A: for a 0.x line, a higher patch is
// compatible with a lower one sharing the same minor, but a different
// minor is never compatible, matching neither npm nor cargo's 0.x rules
// exactly.
func TestZeroDotXCompatibility(t *testing.T) {
	v1 := MustVersion("0.3.5")
	v2 := MustVersion("0.3.2")
	v3 := MustVersion("0.4.0")
	v4 := MustVersion("0.0.1")
	v5 := MustVersion("0.0.2")

	require.True(t, v1.CompatibleWith(v2), "0.3.5 should be compatible with 0.3.2 (same minor, newer patch)")
	require.False(t, v2.CompatibleWith(v1), "0.3.2 is not compatible with the newer 0.3.5")
	require.False(t, v1.CompatibleWith(v3), "different minors under 0.x are never compatible")
	require.False(t, v4.CompatibleWith(v5), "0.0.z carries no compatibility guarantee")
}

func TestVersionReqForms(t *testing.T) {
	cases := []struct {
		req   string
		match string
		ok    bool
	}{
		{"^1.2.3", "1.9.0", true},
		{"^1.2.3", "2.0.0", false},
		{"~1.2.3", "1.2.9", true},
		{"~1.2.3", "1.3.0", false},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", true},
		{">=1.0.0, <2.0.0", "1.5.0", true},
		{">=1.0.0, <2.0.0", "2.0.0", false},
		{"*", "9.9.9", true},
	}
	for _, c := range cases {
		req, err := NewVersionReq(c.req)
		require.NoError(t, err, c.req)
		v := MustVersion(c.match)
		require.Equal(t, c.ok, req.Satisfies(v), "%s vs %s", c.req, c.match)
	}
}

func TestVersionReqExplainOnlyOnFailure(t *testing.T) {
	req, err := NewVersionReq("^2.0.0")
	require.NoError(t, err)
	require.Empty(t, req.Explain(MustVersion("2.1.0")))
	require.NotEmpty(t, req.Explain(MustVersion("1.0.0")))
}
