package model

import "fmt"

// ErrorKind classifies extraction failures
type ErrorKind string

const (
	KindOpen   ErrorKind = "open"
	KindRead   ErrorKind = "read"
	KindDecode ErrorKind = "decode"
)

// ParseError is a decoder diagnostic for one wire element
type ParseError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(field, message string, cause error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ErrMissing reports an absent mandatory element
func ErrMissing(field string) *ParseError {
	return NewParseError(field, "missing mandatory element", nil)
}

// ExtractionError is the terminal failure of parsing one file
type ExtractionError struct {
	Kind  ErrorKind
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case KindOpen:
		return fmt.Sprintf("failed to open file %q: %v", e.Path, e.Cause)
	case KindRead:
		return fmt.Sprintf("failed to read file: %v", e.Cause)
	default:
		return fmt.Sprintf("failed to decode XML in %q: %v", e.Path, e.Cause)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new extraction error
func NewExtractionError(kind ErrorKind, path string, cause error) *ExtractionError {
	return &ExtractionError{
		Kind:  kind,
		Path:  path,
		Cause: cause,
	}
}
