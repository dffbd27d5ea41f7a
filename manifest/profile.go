package manifest

import "github.com/pkg/errors"

// MergeStrategy discriminates how a profile overlay combines with its
// parent's `[cairo]`/`[tool.*]` sub-tables (§4.B rule 2).
type MergeStrategy string

const (
	MergeStrategyReplace MergeStrategy = "replace" // default
	MergeStrategyMerge   MergeStrategy = "merge"
)

// Profile is a named overlay of compiler and tool settings.
type Profile struct {
	Name          string
	Inherits      string
	MergeStrategy MergeStrategy
	Cairo         map[string]interface{}
	Tool          map[string]map[string]interface{}
}

// builtinProfiles returns the two always-available profiles (§4.B rule 2).
func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"dev": {
			Name:          "dev",
			MergeStrategy: MergeStrategyReplace,
			Cairo:         map[string]interface{}{"enable-gas": true},
		},
		"release": {
			Name:          "release",
			MergeStrategy: MergeStrategyReplace,
			Cairo:         map[string]interface{}{"enable-gas": true, "sierra-replace-ids": false},
		},
	}
}

func parseProfile(name string, raw rawDoc) Profile {
	p := Profile{Name: name, MergeStrategy: MergeStrategyReplace}
	if s, ok := raw.str("inherits"); ok {
		p.Inherits = s
	}
	if s, ok := raw.str("merge-strategy"); ok {
		p.MergeStrategy = MergeStrategy(s)
	}
	if cairo, ok := raw.table("cairo"); ok {
		p.Cairo = map[string]interface{}(cairo)
	}
	if tool, ok := raw.table("tool"); ok {
		p.Tool = map[string]map[string]interface{}{}
		for k, v := range tool {
			if m, ok := v.(map[string]interface{}); ok {
				p.Tool[k] = m
			}
		}
	}
	return p
}

// resolveProfile walks the `inherits` chain (built-ins terminate it) and
// applies each overlay's merge strategy against the accumulated base.
func resolveProfile(name string, defined map[string]Profile) (Profile, error) {
	chain := []Profile{}
	seen := map[string]bool{}
	cur := name
	for {
		if seen[cur] {
			return Profile{}, errors.Errorf("profile %q: cyclic inherits chain", name)
		}
		seen[cur] = true
		p, ok := defined[cur]
		if !ok {
			return Profile{}, errors.Errorf("profile %q: no such profile (and no built-in %q)", name, cur)
		}
		chain = append([]Profile{p}, chain...)
		if p.Inherits == "" {
			break
		}
		cur = p.Inherits
	}

	out := Profile{Name: name, Cairo: map[string]interface{}{}, Tool: map[string]map[string]interface{}{}}
	for _, p := range chain {
		switch p.MergeStrategy {
		case MergeStrategyMerge:
			for k, v := range p.Cairo {
				out.Cairo[k] = v
			}
			for ns, tbl := range p.Tool {
				if out.Tool[ns] == nil {
					out.Tool[ns] = map[string]interface{}{}
				}
				for k, v := range tbl {
					out.Tool[ns][k] = v
				}
			}
		default: // replace
			if len(p.Cairo) > 0 {
				out.Cairo = p.Cairo
			}
			if len(p.Tool) > 0 {
				out.Tool = p.Tool
			}
		}
	}
	return out, nil
}

// allProfiles merges user-defined profiles over the built-ins, then
// resolves every inherits chain.
func allProfiles(defs map[string]rawDoc) (map[string]Profile, error) {
	merged := builtinProfiles()
	for name, raw := range defs {
		merged[name] = parseProfile(name, raw)
	}
	resolved := make(map[string]Profile, len(merged))
	for name := range merged {
		p, err := resolveProfile(name, merged)
		if err != nil {
			return nil, err
		}
		resolved[name] = p
	}
	return resolved, nil
}
