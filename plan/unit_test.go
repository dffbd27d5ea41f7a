package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/software-mansion/scarb/resolve"
	"github.com/software-mansion/scarb/scarbid"
)

func mustName(t *testing.T, s string) scarbid.PackageName {
	t.Helper()
	n, err := scarbid.NewPackageName(s)
	require.NoError(t, err)
	return n
}

func TestLibAndContractTargetsYieldTwoUnits(t *testing.T) {
	pkgID := scarbid.PackageId{
		Name:    mustName(t, "mytoken"),
		Version: scarbid.MustVersion("0.1.0"),
		Source:  scarbid.NewPathSourceId("/ws/mytoken"),
	}
	g := &resolve.Graph{Packages: map[string]resolve.Summary{
		pkgID.String(): {ID: pkgID},
	}}
	member := MemberInput{
		Package: pkgID,
		Targets: []Target{
			{Kind: TargetKindLib, Name: "mytoken"},
			{Kind: TargetKindStarknetContract, Name: "mytoken"},
		},
		CompilerConfig: map[string]interface{}{"enable-gas": true},
	}

	units, err := Plan(g, []MemberInput{member})
	require.NoError(t, err)
	require.Len(t, units, 2, "the lib target and the contract target each get their own unit")
	kinds := []TargetKind{units[0].MainComponent.Target.Kind, units[1].MainComponent.Target.Kind}
	require.ElementsMatch(t, []TargetKind{TargetKindLib, TargetKindStarknetContract}, kinds)
}

func TestContractWithGasDisabledFailsTargetConstraint(t *testing.T) {
	pkgID := scarbid.PackageId{
		Name:    mustName(t, "mytoken"),
		Version: scarbid.MustVersion("0.1.0"),
		Source:  scarbid.NewPathSourceId("/ws/mytoken"),
	}
	g := &resolve.Graph{Packages: map[string]resolve.Summary{
		pkgID.String(): {ID: pkgID},
	}}
	member := MemberInput{
		Package:        pkgID,
		Targets:        []Target{{Kind: TargetKindStarknetContract, Name: "mytoken"}},
		CompilerConfig: map[string]interface{}{"enable-gas": false},
	}

	_, err := Plan(g, []MemberInput{member})
	require.Error(t, err)
	var tce *TargetConstraintError
	require.ErrorAs(t, err, &tce)
}

func TestFingerprintStableAcrossCallsWithSameInputs(t *testing.T) {
	pkgID := scarbid.PackageId{
		Name:    mustName(t, "hello"),
		Version: scarbid.MustVersion("0.1.0"),
		Source:  scarbid.NewPathSourceId("/ws/hello"),
	}
	main := Component{Package: pkgID, Target: Target{Kind: TargetKindLib}}
	cfg := map[string]interface{}{"enable-gas": true}

	a := fingerprintUnit(main, nil, nil, []string{"target:lib"}, cfg)
	b := fingerprintUnit(main, nil, nil, []string{"target:lib"}, cfg)
	require.Equal(t, a, b)
}
