package faults

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCategory string

const (
	ConfigMissingError ErrorCategory = "ConfigMissingError"
	ValidationError    ErrorCategory = "ValidationError"
	NotFoundError      ErrorCategory = "NotFoundError"
	LookupError        ErrorCategory = "LookupError"
	ConflictError      ErrorCategory = "ConflictError"
	AuthError          ErrorCategory = "AuthError"
	TransportError     ErrorCategory = "TransportError"
	InternalError      ErrorCategory = "InternalError"
)

// Issue is a single field-level problem reported by the remote side on a
// rejected payload.
type Issue struct {
	Message  string   `json:"message" yaml:"message"`
	Code     string   `json:"code" yaml:"code"`
	Path     []string `json:"path,omitempty" yaml:"path,omitempty"`
	Expected string   `json:"expected,omitempty" yaml:"expected,omitempty"`
	Received string   `json:"received,omitempty" yaml:"received,omitempty"`
}

func (i Issue) String() string {
	code := strings.Join(strings.Split(i.Code, "_"), " ")
	return fmt.Sprintf("%s; %s on field %q.", i.Message, code, strings.Join(i.Path, "."))
}

type TypedError struct {
	Category ErrorCategory
	Message  string
	Cause    error
	Issues   []Issue
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// WithIssues returns a copy of err carrying the given field issues.
func (e *TypedError) WithIssues(issues []Issue) *TypedError {
	if e == nil {
		return nil
	}
	cloned := *e
	cloned.Issues = append([]Issue(nil), issues...)
	return &cloned
}

// Wrap prefixes the message of a typed error while keeping its category and
// issues. Untyped errors become InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return NewTypedError(InternalError, message, err)
	}

	wrapped := &TypedError{
		Category: typedErr.Category,
		Message:  message,
		Cause:    err,
		Issues:   typedErr.Issues,
	}
	return wrapped
}

func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return false
	}
	return typedErr.Category == category
}

// IssuesOf returns the field issues carried by the outermost typed error that
// has any.
func IssuesOf(err error) []Issue {
	for err != nil {
		var typedErr *TypedError
		if !errors.As(err, &typedErr) {
			return nil
		}
		if len(typedErr.Issues) > 0 {
			return typedErr.Issues
		}
		err = typedErr.Cause
	}
	return nil
}
