package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of failure surfaced to the user.
type ErrorCode string

const (
	ErrCodeInvalidFlag     ErrorCode = "CONFIG-001"
	ErrCodeMissingFlag     ErrorCode = "CONFIG-002"
	ErrCodeEmptyPlan       ErrorCode = "CONFIG-003"
	ErrCodeInvalidConfig   ErrorCode = "CONFIG-004"
	ErrCodeCriticalMissing ErrorCode = "TOOL-001"
	ErrCodeGateFailed      ErrorCode = "RUN-001"
)

// Error is a user-facing failure with an actionable message.
type Error struct {
	Code        ErrorCode
	Message     string
	Flag        string
	Suggestions []string
	Cause       error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(&b, "\n  • %s", s)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// IsConfig reports whether the error happened before any tool work started.
func (e *Error) IsConfig() bool {
	return strings.HasPrefix(string(e.Code), "CONFIG-")
}

// NewError creates an Error with the given code.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithFlag records the offending CLI flag.
func (e *Error) WithFlag(flag string) *Error {
	e.Flag = flag
	return e
}

// WithSuggestions appends remediation hints.
func (e *Error) WithSuggestions(s ...string) *Error {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// CodeOf returns the ErrorCode carried by err, or "" if none.
func CodeOf(err error) ErrorCode {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}
