package scarbid

import (
	"regexp"

	"github.com/pkg/errors"
)

// packageNameRE matches a non-empty lowercase ASCII identifier: letters,
// digits and underscores, not starting with a digit.
var packageNameRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// keywords mirrors the Cairo language's reserved words; a manifest may not
// name a package after one of these (§4.B rule 6).
var keywords = map[string]bool{
	"fn": true, "let": true, "mod": true, "use": true, "struct": true,
	"enum": true, "trait": true, "impl": true, "if": true, "else": true,
	"match": true, "loop": true, "while": true, "for": true, "return": true,
	"break": true, "continue": true, "const": true, "extern": true,
	"type": true, "as": true, "pub": true, "self": true, "super": true,
	"true": true, "false": true, "in": true, "ref": true, "mut": true,
	"nopanic": true, "implicits": true,
}

// PackageName is a non-empty lowercase ASCII identifier, validated against
// the Cairo keyword list.
type PackageName string

// NewPackageName validates and constructs a PackageName.
func NewPackageName(s string) (PackageName, error) {
	if !packageNameRE.MatchString(s) {
		return "", errors.Errorf("invalid package name %q: must match %s", s, packageNameRE.String())
	}
	if keywords[s] {
		return "", errors.Errorf("invalid package name %q: %q is a reserved keyword", s, s)
	}
	return PackageName(s), nil
}

func (n PackageName) String() string { return string(n) }
