// Package errors gives archflow errors a machine-readable [Code] that
// survives wrapping, so the HTTP layer and the CLI can react to the kind of
// failure without matching on message text.
//
//	err := errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", dir)
//	errors.Is(err, errors.ErrCodeInvalidDirection) // true
//
//	err = errors.Wrap(errors.ErrCodeStorage, err, "save workflow %s", id)
//	errors.GetCode(err) // STORAGE_ERROR, the outermost code wins
//
// Codes starting with INVALID_ are client mistakes and codes ending with
// NOT_FOUND are missing resources; see [IsInvalid] and [IsNotFound].
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidNodeKind  Code = "INVALID_NODE_KIND"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeWorkflowNotFound Code = "WORKFLOW_NOT_FOUND"

	// An editor session that has not loaded a workflow, or was opened
	// read-only.
	ErrCodeNotLoaded Code = "NOT_LOADED"
	ErrCodeReadOnly  Code = "READ_ONLY"

	ErrCodeStorage       Code = "STORAGE_ERROR"
	ErrCodeSerialization Code = "SERIALIZATION_ERROR"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a Code, a message meant for users, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	c, ok := codeOf(err)
	return ok && c == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	c, _ := codeOf(err)
	return c
}

// UserMessage returns the message of the outermost *Error without its code
// or cause, falling back to err.Error().
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsInvalid reports whether err carries an INVALID_ code.
func IsInvalid(err error) bool {
	return strings.HasPrefix(string(GetCode(err)), "INVALID_")
}

// IsNotFound reports whether err carries a NOT_FOUND code.
func IsNotFound(err error) bool {
	return strings.HasSuffix(string(GetCode(err)), "NOT_FOUND")
}

func codeOf(err error) (Code, bool) {
	e, ok := asError(err)
	if !ok {
		return "", false
	}
	return e.Code, true
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
