package manifest

// TargetKind enumerates the buildable/describable target kinds of §3.
type TargetKind string

const (
	TargetKindLib          TargetKind = "lib"
	TargetKindExecutable   TargetKind = "executable"
	TargetKindContract     TargetKind = "starknet-contract"
	TargetKindTest         TargetKind = "test"
	TargetKindCairoPlugin  TargetKind = "cairo-plugin"
	TargetKindDoc          TargetKind = "doc"
)

// Target is one `[[target.<kind>]]` (or the implicit `[lib]`) entry.
type Target struct {
	Kind   TargetKind
	Name   string
	Source string // source-path, relative to the package root
	Params map[string]interface{}
}

// BuildExternalContracts returns the glob patterns named in a test
// target's `build-external-contracts` key (§4.H edge policy).
func (t Target) BuildExternalContracts() []string {
	v, ok := t.Params["build-external-contracts"]
	if !ok {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseTarget(kind TargetKind, name string, raw rawDoc) Target {
	t := Target{Kind: kind, Name: name, Params: map[string]interface{}(raw)}
	if s, ok := raw.str("name"); ok {
		t.Name = s
	}
	if s, ok := raw.str("source-path"); ok {
		t.Source = s
	} else if s, ok := raw.str("path"); ok {
		t.Source = s
	}
	return t
}

// defaultLibTarget is injected when no target sections are present at all
// (§4.B rule 3).
func defaultLibTarget(pkgName string) Target {
	return Target{Kind: TargetKindLib, Name: pkgName, Source: "src/lib.cairo", Params: map[string]interface{}{}}
}
