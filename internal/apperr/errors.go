// Package apperr defines the typed error taxonomy shared by the storage and
// service layers. Every error carries a stable short code for programmatic
// handling and a human-readable message; the HTTP layer maps kinds to status
// codes.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for boundary handling.
type Kind int

const (
	// KindNotFound means the addressed entity does not exist in any project.
	KindNotFound Kind = iota
	// KindInvalidReference means a parent map or link target is missing or
	// belongs to another project.
	KindInvalidReference
	// KindUnsafePath means a computed path escapes the project root. Defensive;
	// never expected in normal operation.
	KindUnsafePath
	// KindValidation means the input shape is malformed.
	KindValidation
	// KindResourceTooLarge means an asset or text body exceeds its ceiling.
	KindResourceTooLarge
	// KindConflict means a patch carried a stale row version.
	KindConflict
	// KindStorage means an unclassified file or database I/O failure.
	KindStorage
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a not-found error for the named entity, e.g. "map".
func NotFound(entity string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    strings.ToUpper(entity) + "_NOT_FOUND",
		Message: entity + " not found",
	}
}

// InvalidReference builds an invalid-reference error with the given code.
func InvalidReference(code, message string) *Error {
	return &Error{Kind: KindInvalidReference, Code: code, Message: message}
}

// UnsafePath builds the defensive path-escape error.
func UnsafePath(candidate string) *Error {
	return &Error{
		Kind:    KindUnsafePath,
		Code:    "UNSAFE_PATH",
		Message: fmt.Sprintf("unsafe path (outside project root): %s", candidate),
	}
}

// Validation builds a validation error enumerating the inconsistent fields.
func Validation(code string, fields ...string) *Error {
	msg := "invalid input"
	if len(fields) > 0 {
		msg = "invalid field(s): " + strings.Join(fields, ", ")
	}
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// TooLarge builds a resource-too-large error.
func TooLarge(code string, limit int64) *Error {
	return &Error{
		Kind:    KindResourceTooLarge,
		Code:    code,
		Message: fmt.Sprintf("resource exceeds limit of %d bytes", limit),
	}
}

// Conflict builds a stale-version conflict error for the named entity.
func Conflict(entity string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    strings.ToUpper(entity) + "_VERSION_CONFLICT",
		Message: entity + " was modified concurrently; re-read and retry",
	}
}

// Storage wraps an unclassified I/O failure.
func Storage(err error, message string) *Error {
	return &Error{Kind: KindStorage, Code: "STORAGE_FAILURE", Message: message, Err: err}
}

// KindOf reports the kind of err if it is (or wraps) an *Error, and KindStorage
// otherwise, so callers always get a classification.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

// CodeOf reports the stable code of err, or "INTERNAL_ERROR" for untyped errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "INTERNAL_ERROR"
}

// Is lets errors.Is match two typed errors by code.
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}
