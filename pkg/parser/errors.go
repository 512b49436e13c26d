package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDialect is returned when the configured dialect is not
	// supported.
	ErrUnknownDialect = errors.New("parser: unknown dialect")

	// ErrContextCanceled is returned when the context is canceled
	// mid-scan.
	ErrContextCanceled = errors.New("parser: context canceled")
)

// ErrorReason classifies why a log line failed to decode.
type ErrorReason uint8

const (
	// ReasonMalformedLine covers wrong field counts and fields that do
	// not parse.
	ReasonMalformedLine ErrorReason = iota + 1

	// ReasonUnknownKind covers lines whose leading kind token is not a
	// record type the dialect defines.
	ReasonUnknownKind
)

// String returns the reason name used in reports.
func (r ErrorReason) String() string {
	switch r {
	case ReasonMalformedLine:
		return "malformed_line"
	case ReasonUnknownKind:
		return "unknown_kind"
	default:
		return "unknown"
	}
}

// ParseError describes one undecodable log line. A line that fails to
// decode never aborts the scan; callers collect these and decide.
type ParseError struct {
	// Line is the 1-based source line number.
	Line int

	// Raw is the offending line with the line ending trimmed.
	Raw string

	// Reason classifies the failure.
	Reason ErrorReason

	// Kind is the unrecognized kind token (ReasonUnknownKind only).
	Kind string

	// Field names the field that failed to parse, when one is
	// attributable (ReasonMalformedLine only).
	Field string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Reason == ReasonUnknownKind:
		return fmt.Sprintf("line %d: unknown record kind %q", e.Line, e.Kind)
	case e.Field != "":
		return fmt.Sprintf("line %d: failed to parse %s in %q", e.Line, e.Field, e.Raw)
	default:
		return fmt.Sprintf("line %d: malformed record %q", e.Line, e.Raw)
	}
}

func malformed(line int, raw []byte, field string) *ParseError {
	return &ParseError{
		Line:   line,
		Raw:    string(raw),
		Reason: ReasonMalformedLine,
		Field:  field,
	}
}

func unknownKind(line int, raw, kind []byte) *ParseError {
	return &ParseError{
		Line:   line,
		Raw:    string(raw),
		Reason: ReasonUnknownKind,
		Kind:   string(kind),
	}
}
