package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryDerivation Category = "derivation"
	CategoryRuntime    Category = "runtime"
	CategoryStore      Category = "store"
)

// BindError is a structured error with a registry code, the node it relates
// to and an optional fix hint.
type BindError struct {
	// Code is a unique error identifier (e.g., "B001").
	Code string

	// Category is the error type (config, derivation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Node is the display name of the connected node involved, if any.
	Node string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	msg := e.Message
	if e.Node != "" {
		msg = fmt.Sprintf("%s (node %q)", msg, e.Node)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// base lets errors.As find a BindError embedded in a typed error such as
// subscription.ConfigurationError.
func (e *BindError) base() *BindError {
	return e
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BindError) Unwrap() error {
	return e.Wrapped
}

// WithNode records the node the error relates to.
func (e *BindError) WithNode(name string) *BindError {
	e.Node = name
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BindError) WithSuggestion(s string) *BindError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registry explanation.
func (e *BindError) WithDetail(d string) *BindError {
	e.Detail = d
	return e
}

// WithMessage replaces the registry message.
func (e *BindError) WithMessage(format string, args ...any) *BindError {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *BindError) Wrap(err error) *BindError {
	e.Wrapped = err
	return e
}

// New creates a BindError from a registered error code.
func New(code string) *BindError {
	template, ok := registry[code]
	if !ok {
		return &BindError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BindError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// FromError returns err as a BindError, wrapping it under code unless it
// already is one.
func FromError(err error, code string) *BindError {
	if err == nil {
		return nil
	}
	if be, ok := err.(*BindError); ok {
		return be
	}
	return New(code).Wrap(err)
}
