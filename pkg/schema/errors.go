// Package schema error types.
//
// Every malformed wire shape surfaces as a *ParseError so callers can
// separate "the bytes are not a valid encoding" from the digest-level
// validity rules layered on top.
package schema

import "fmt"

// ParseError is returned when bytes fail to decode as a schema type.
//
// Common causes: truncated headers, a size field disagreeing with the
// buffer length, non-monotonic table offsets, or an unknown tag in a
// closed union.
type ParseError struct {
	Type    string // Schema type being decoded (e.g. "Hash", "Struct")
	Message string // Human-readable description of the violation
	Cause   error  // Underlying error (if any)
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema: invalid %s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema: invalid %s: %s", e.Type, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func parseErr(typ, format string, args ...interface{}) *ParseError {
	return &ParseError{Type: typ, Message: fmt.Sprintf(format, args...)}
}
