package errors

import (
	"sort"
	"strings"
)

// Error is the diagnostic type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable diagnostic code
	Message  string            // Fixed message for the code
	Metadata map[string]string // Positional or naming context
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface. Metadata is rendered in key order so
// the same diagnostic prints identically across runs.
func (e *Error) Error() string {
	if len(e.Metadata) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Metadata))
	for key := range e.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString(" (")
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(e.Metadata[key])
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// With returns a copy of e carrying the given metadata pairs. Odd trailing
// keys are dropped.
func (e *Error) With(keysAndValues ...string) *Error {
	metadata := make(map[string]string, len(e.Metadata)+len(keysAndValues)/2)
	for key, value := range e.Metadata {
		metadata[key] = value
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		metadata[keysAndValues[i]] = keysAndValues[i+1]
	}
	return &Error{
		Code:     e.Code,
		Message:  e.Message,
		Metadata: metadata,
		Cause:    e.Cause,
	}
}

// New creates a simple diagnostic with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a diagnostic with metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a diagnostic that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	for err != nil {
		if typed, ok := err.(*Error); ok {
			return typed.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return CodeUnknown
}
