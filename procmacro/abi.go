// Package procmacro implements §4.I's plugin host: building, loading and
// dispatching procedural macro plugins across a stable token-stream ABI.
//
// Grounded on the teacher's two out-of-process collaboration patterns:
// invoking a foreign toolchain via os/exec (the way dep's gps package
// shells out to `git`/`hg`/`bzr` through Masterminds/vcs), and Go's own
// stdlib `plugin` package for the in-process shared-library load step,
// since that is the only mechanism the standard toolchain offers for
// dlopen-style loading and no corpus example substitutes for it (see
// DESIGN.md).
package procmacro

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TokenKind discriminates the token kinds recognized by the foreign ABI.
type TokenKind uint8

const (
	TokenIdent TokenKind = iota
	TokenLiteral
	TokenPunct
	TokenWhitespace
)

// Span is a byte-offset range into the original source, or the
// CallSiteSpan sentinel for tokens minted inside a macro (§4.I).
type Span struct {
	Start, End int64
	CallSite   bool
}

// Token is one element of a token stream (§4.I: "a finite, restartable
// sequence of (kind, text, span) tuples").
type Token struct {
	Kind TokenKind
	Text string
	Span Span
}

// TokenStream is a restartable sequence of Tokens crossing the FFI
// boundary.
type TokenStream struct {
	Tokens []Token
}

// Severity grades a Diagnostic emitted by a macro expansion.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one diagnostic emitted by a macro expansion, optionally
// pointing at a span in the caller's source (§4.I).
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     *Span
}

// ExpansionResult is everything a macro invocation returns across the ABI:
// the rewritten token stream, an auxiliary JSON blob, diagnostics, and
// optional full-path markers used to resolve macro-generated module
// paths (§4.I).
type ExpansionResult struct {
	Tokens      TokenStream
	AuxData     []byte // JSON, opaque to the host
	Diagnostics []Diagnostic
	FullPaths   []string
}

// CallKind discriminates the three callable kinds a plugin registers
// (§4.I point 2: "inline, attribute, derive").
type CallKind uint8

const (
	CallKindInline CallKind = iota
	CallKindAttribute
	CallKindDerive
)

// frameMagic tags the start of a length-prefixed frame crossing the FFI
// boundary, catching a mismatched plugin binary early rather than
// mis-decoding garbage (§4.I PluginAbiMismatch).
const frameMagic uint32 = 0x53435242 // "SCRB"

// EncodeFrame writes a length-prefixed, stably-laid-out frame: magic,
// length, payload (§4.I: "Cross-boundary data uses a length-prefixed,
// stably-laid-out encoding").
func EncodeFrame(w io.Writer, payload []byte) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], frameMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// DecodeFrame reads back a frame written by EncodeFrame, rejecting a
// magic mismatch as an ABI mismatch rather than silently misreading the
// payload length.
func DecodeFrame(r io.Reader) ([]byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading frame header: %w", err)
	}
	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != frameMagic {
		return nil, &AbiMismatchError{Expected: frameMagic, Got: magic}
	}
	length := binary.LittleEndian.Uint32(header[4:8])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return payload, nil
}

// AbiMismatchError reports a frame whose magic number did not match what
// the host expected, the proc-macro analog of a version skew between
// client and server wire formats.
type AbiMismatchError struct {
	Expected, Got uint32
}

func (e *AbiMismatchError) Error() string {
	return fmt.Sprintf("plugin ABI mismatch: expected frame magic %#x, got %#x", e.Expected, e.Got)
}
