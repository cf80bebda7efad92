// Package perrors defines the parser's error taxonomy. Every failure
// path in the two-stage pipeline maps to exactly one Kind, carrying the
// byte offset and (where applicable) offending character the teacher's
// own debug tooling (dump_raw_tape, updateCharDebug) prints by hand.
package perrors

import "fmt"

// Kind enumerates every way a parse can fail.
type Kind uint8

const (
	InputTooLarge Kind = iota
	InvalidUtf8
	UnterminatedString
	UnescapedControl
	InvalidEscape
	InvalidUnicodeCodepoint
	InvalidUnicodeEscape
	ExpectedArray
	ExpectedObject
	ExpectedColon
	ExpectedComma
	ExpectedTrue
	ExpectedFalse
	ExpectedNull
	ExpectedString
	ExpectedNumber
	InvalidNumber
	InvalidExponent
	Overflow
	Depth
	TrailingData
	Eof
)

var kindNames = map[Kind]string{
	InputTooLarge:           "InputTooLarge",
	InvalidUtf8:             "InvalidUtf8",
	UnterminatedString:      "UnterminatedString",
	UnescapedControl:        "UnescapedControl",
	InvalidEscape:           "InvalidEscape",
	InvalidUnicodeCodepoint: "InvalidUnicodeCodepoint",
	InvalidUnicodeEscape:    "InvalidUnicodeEscape",
	ExpectedArray:           "ExpectedArray",
	ExpectedObject:          "ExpectedObject",
	ExpectedColon:           "ExpectedColon",
	ExpectedComma:           "ExpectedComma",
	ExpectedTrue:            "ExpectedTrue",
	ExpectedFalse:           "ExpectedFalse",
	ExpectedNull:            "ExpectedNull",
	ExpectedString:          "ExpectedString",
	ExpectedNumber:          "ExpectedNumber",
	InvalidNumber:           "InvalidNumber",
	InvalidExponent:         "InvalidExponent",
	Overflow:                "Overflow",
	Depth:                   "Depth",
	TrailingData:            "TrailingData",
	Eof:                     "Eof",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// ParseError is the concrete error type surfaced at the module
// boundary (spec.md §6.3): it always carries the byte offset the
// failure was detected at, the offending character when one exists,
// and an internal-state discriminant useful when attaching a debugger.
// It is a distinct type from Kind so that callers can errors.As into
// it to recover Offset/Char.
type ParseError struct {
	Kind     Kind
	Offset   int64
	Char     byte
	HasChar  bool
	Internal string
}

func (e *ParseError) Error() string {
	if e.HasChar {
		return fmt.Sprintf("simdjson: %s at offset %d (char %q)", e.Kind, e.Offset, e.Char)
	}
	return fmt.Sprintf("simdjson: %s at offset %d", e.Kind, e.Offset)
}

// New builds a ParseError with no offending character recorded.
func New(kind Kind, offset int64, internal string) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Internal: internal}
}

// NewChar builds a ParseError that also records the offending byte.
func NewChar(kind Kind, offset int64, char byte, internal string) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Char: char, HasChar: true, Internal: internal}
}
