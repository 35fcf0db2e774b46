package purchase

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason codes surfaced to clients. These are part of the API contract and
// must stay stable.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidState      = "INVALID_STATE"
	CodeSeatUnavailable   = "SEAT_UNAVAILABLE"
	CodeLockRejected      = "LOCK_REJECTED"
	CodeSaleRejected      = "SALE_REJECTED"
	CodeRemoteUnavailable = "REMOTE_UNAVAILABLE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeTooManyAttempts   = "TOO_MANY_ATTEMPTS"
	CodeInternal          = "INTERNAL"
)

// Error is a domain error carrying a stable machine-readable reason code and
// a human message. It may wrap an underlying cause.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// AsError extracts a domain *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// HTTPStatus maps a reason code to the HTTP status the controllers respond
// with.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeInvalidState:
		return http.StatusConflict
	case CodeSeatUnavailable, CodeLockRejected, CodeSaleRejected:
		return http.StatusConflict
	case CodeTooManyAttempts:
		return http.StatusTooManyRequests
	case CodeRemoteUnavailable:
		return http.StatusBadGateway
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrMultipleActiveSessions indicates the "at most one non-terminal session
// per user" invariant was violated in the store. Treated as fatal: the
// request fails and the condition is logged for operator attention.
var ErrMultipleActiveSessions = errors.New("multiple non-terminal sessions found for user")
