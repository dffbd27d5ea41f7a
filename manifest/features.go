package manifest

import "github.com/pkg/errors"

// visitState mirrors the three-color DFS marker the teacher's pkgtree
// package uses to detect import cycles (horizonEntry's visited states),
// generalized here to detect cycles among `[features]` declarations.
type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// FeatureSet is the declared `[features]` table: a feature name maps to
// the list of other declared features it implies.
type FeatureSet map[string][]string

func parseFeatures(raw rawDoc) (FeatureSet, error) {
	fs := make(FeatureSet, len(raw))
	for name, v := range raw {
		arr, ok := v.([]interface{})
		if !ok {
			return nil, errors.Errorf("feature %q: expected an array of implied feature names", name)
		}
		implied := make([]string, 0, len(arr))
		for _, e := range arr {
			s, ok := e.(string)
			if !ok {
				return nil, errors.Errorf("feature %q: implied features must be strings", name)
			}
			implied = append(implied, s)
		}
		fs[name] = implied
	}
	return fs, fs.validate()
}

// validate rejects references to undeclared features and dependency
// cycles among declarations (§4.B rule 5).
func (fs FeatureSet) validate() error {
	state := make(map[string]visitState, len(fs))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			stack = append(stack, name)
			return errors.Errorf("cyclic feature declaration: %v", append(append([]string{}, stack...)))
		}
		implied, ok := fs[name]
		if !ok {
			return errors.Errorf("feature declaration references unknown feature %q", name)
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range implied {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
		return nil
	}

	for name := range fs {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// HasDefault reports whether a "default" feature was declared.
func (fs FeatureSet) HasDefault() bool {
	_, ok := fs["default"]
	return ok
}
