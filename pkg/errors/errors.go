package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT and tokens
	ErrInvalidSigningMethod = errors.New("invalid token signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenIsNotAccess     = errors.New("token is not an access token")

	// Authorization
	ErrEmptyAuthHeader   = errors.New("authorization header is missing")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrForbidden         = errors.New("access denied")

	// Context
	ErrInvalidUserID   = errors.New("invalid user id in request context")
	ErrInvalidBranchID = errors.New("invalid branch id in request context")

	// Common
	ErrNotFound   = errors.New("record not found")
	ErrBadRequest = errors.New("bad request")
)

// HttpError carries the status code the API boundary should answer with.
// The message is surfaced to the client verbatim.
type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string { return e.Message }

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

func NewNotFoundError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusNotFound, fmt.Sprintf(format, args...), ErrNotFound)
}

// NewStateConflictError is raised when an operation is invalid for the
// entity's current status (blocked unit, completed transfer, non-pending
// request). The message names the live status and must reach the caller
// unmodified.
func NewStateConflictError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusConflict, fmt.Sprintf(format, args...), nil)
}

func NewInternalError(message string, err error) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message, err)
}

// IsStateConflict reports whether err is a state-conflict HttpError.
func IsStateConflict(err error) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusConflict
	}
	return false
}
