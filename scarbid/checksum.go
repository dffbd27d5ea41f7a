package scarbid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Checksum is an algorithm-tagged content digest, serialized as
// "sha256:<hex>" in index JSON and lockfile entries (§3, §6.3).
type Checksum struct {
	Algorithm string
	Digest    string // lowercase hex
}

// SHA256Of computes a Checksum over r's content.
func SHA256Of(r io.Reader) (Checksum, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Checksum{}, errors.Wrap(err, "hashing content for checksum")
	}
	return Checksum{Algorithm: "sha256", Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

func (c Checksum) String() string {
	if c.Algorithm == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.Algorithm, c.Digest)
}

func (c Checksum) IsZero() bool { return c.Algorithm == "" }

func (c Checksum) Equal(o Checksum) bool {
	return c.Algorithm == o.Algorithm && strings.EqualFold(c.Digest, o.Digest)
}

// ParseChecksum parses the "algo:hex" form used by the registry index and
// the lockfile.
func ParseChecksum(s string) (Checksum, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Checksum{}, errors.Errorf("invalid checksum %q: want \"algo:hex\"", s)
	}
	if parts[0] != "sha256" {
		return Checksum{}, errors.Errorf("unsupported checksum algorithm %q", parts[0])
	}
	return Checksum{Algorithm: parts[0], Digest: strings.ToLower(parts[1])}, nil
}

// ChecksumMismatchError reports a verification failure for a downloaded
// archive (§4.C SourceChecksumMismatch).
type ChecksumMismatchError struct {
	Package  PackageId
	Expected Checksum
	Got      Checksum
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Package, e.Expected, e.Got)
}
