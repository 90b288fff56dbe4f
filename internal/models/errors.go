package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error types
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

// Error codes shared by AppError and the HTTP layer
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeDatabase     = "DATABASE_ERROR"
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrInvalidInput creates a validation error
func ErrInvalidInput(message string) error {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
	}
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Err:     ErrNotFound,
	}
}

// ValidationError reports every field of a submission that was rejected.
// It is returned before any persistence call is made.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Field returns the message recorded for a field, if any
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// PersistenceError wraps a database failure. Message is safe to show to
// users; the cause is kept for server-side logging only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Message()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Message returns the generic user-facing message for the failed operation
func (e *PersistenceError) Message() string {
	return fmt.Sprintf("Database error: Failed to %s invoice.", e.Op)
}

// NewPersistenceError creates a persistence error for the given operation
func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
