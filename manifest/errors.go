package manifest

import "github.com/pkg/errors"

// SemanticsError is returned by Canonicalize when a manifest is
// syntactically valid TOML but violates a §4.B rule (§7
// ManifestSemantics).
type SemanticsError struct {
	Path string
	Err  error
}

func (e *SemanticsError) Error() string {
	return errors.Wrapf(e.Err, "invalid manifest %s", e.Path).Error()
}
func (e *SemanticsError) Unwrap() error { return e.Err }

func semErr(path string, format string, args ...interface{}) error {
	return &SemanticsError{Path: path, Err: errors.Errorf(format, args...)}
}
