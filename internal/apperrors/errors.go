// Package apperrors defines the error kinds shared by the bridge services.
// Handlers translate a Kind into an HTTP status; services only build errors.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindService Kind = iota
	KindBadRequest
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindDispatch
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindDispatch:
		return "dispatch_error"
	default:
		return "service_error"
	}
}

// Error carries a user-facing message. Err holds the underlying cause and is
// never shown to callers; Details is optional structured context (for example
// the messaging provider's rejection body).
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// Dispatch reports a rejection from the downstream messaging provider.
func Dispatch(msg string, details any) *Error {
	return &Error{Kind: KindDispatch, Message: msg, Details: details}
}

// Service wraps an unexpected failure in the identity or document store.
func Service(msg string, err error) *Error {
	return &Error{Kind: KindService, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindService
// for any other error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindService
}

func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Message returns the user-facing message, falling back to a generic one for
// errors that did not originate here.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// DetailsOf returns the Details of the first *Error in err's chain.
func DetailsOf(err error) any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}
