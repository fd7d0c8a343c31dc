// Package apperr defines the closed set of domain error kinds used by the
// resolvers and normalized into the wire envelope by the graphql package.
// Every failure that is allowed to reach a client is one of these kinds;
// anything else is treated as internal and must not leak details.
package apperr

import "net/http"

// Kind enumerates the logical failure categories of the service.
type Kind int

// The closed set of error kinds. KindInternal is the zero value so an
// uninitialized Error defaults to the safest classification.
const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
)

// Status returns the logical status code carried inside the wire envelope
// for this kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindConflict:
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

// FieldError describes a single input validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a domain error: a kind, a client-facing message and an optional
// structured detail payload (per-field messages for validation failures).
type Error struct {
	Kind    Kind
	Message string
	Data    any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unauthenticated reports a request that requires an authenticated caller.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden reports a caller acting on a resource it does not own.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation reports one or more input violations collected into a single
// failure. The fields slice becomes the envelope's data payload.
func Validation(message string, fields []FieldError) *Error {
	e := &Error{Kind: KindValidation, Message: message}
	// A typed nil slice in the any field would serialize as "data": null
	// instead of omitting the key.
	if len(fields) > 0 {
		e.Data = fields
	}

	return e
}

// Conflict reports a uniqueness violation such as a duplicate email.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal reports an unclassified server-side failure.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}
