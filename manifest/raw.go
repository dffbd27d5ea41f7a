// Package manifest implements component B: parsing, validation and
// workspace/profile/feature merging of package manifests (§4.B).
//
// Grounded on the teacher's manifest.go/toml.go raw/cooked split
// (rawManifest -> Manifest, tomlMapper query helper), re-targeted from
// the teacher's JSON manifest.json to TOML Scarb.toml documents decoded
// with pelletier/go-toml into a generic map, since a dependency table
// value in Scarb.toml is polymorphic (bare string or inline table) in a
// way that doesn't map cleanly onto static struct tags.
package manifest

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// rawDoc is a parsed TOML document as a generic tree of
// map[string]interface{}, []interface{}, and scalar values -- the shape
// go-toml's Unmarshal produces when decoding into an `interface{}`.
type rawDoc map[string]interface{}

// ManifestSyntaxError wraps a TOML parse failure (§4.B, §7).
type ManifestSyntaxError struct {
	Path string
	Err  error
}

func (e *ManifestSyntaxError) Error() string {
	return errors.Wrapf(e.Err, "failed to parse manifest %s", e.Path).Error()
}
func (e *ManifestSyntaxError) Unwrap() error { return e.Err }

// ParseTOML decodes raw manifest text into a generic document. It is the
// `parse(text) -> TomlManifest` operation of §4.B.
func ParseTOML(path string, text []byte) (rawDoc, error) {
	var v interface{}
	if err := toml.Unmarshal(text, &v); err != nil {
		return nil, &ManifestSyntaxError{Path: path, Err: err}
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ManifestSyntaxError{Path: path, Err: errors.New("top-level TOML value must be a table")}
	}
	return rawDoc(m), nil
}

func (d rawDoc) table(key string) (rawDoc, bool) {
	v, ok := d[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return rawDoc(m), true
}

func (d rawDoc) tableArray(key string) []rawDoc {
	v, ok := d[key]
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []map[string]interface{}:
		out := make([]rawDoc, len(arr))
		for i, m := range arr {
			out[i] = rawDoc(m)
		}
		return out
	case []interface{}:
		out := make([]rawDoc, 0, len(arr))
		for _, e := range arr {
			if m, ok := e.(map[string]interface{}); ok {
				out = append(out, rawDoc(m))
			}
		}
		return out
	default:
		return nil
	}
}

func (d rawDoc) str(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (d rawDoc) boolean(key string) (bool, bool) {
	v, ok := d[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (d rawDoc) strSlice(key string) []string {
	v, ok := d[key]
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

// isWorkspaceMarker reports whether a dependency/field value is the
// `workspace = true` inheritance marker of §4.B rule 1.
func isWorkspaceMarker(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	b, ok := m["workspace"].(bool)
	return ok && b
}
