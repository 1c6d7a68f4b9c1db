package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Status is the HTTP status returned by the API, zero when no response was received.
	Status int   `json:"status,omitempty"`
	Err    error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrMissingToken
	ErrNetwork
	ErrServer
	ErrDecode
	ErrInFlight
	ErrConflict
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrBadRequest:
		return "bad_request"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrForbidden:
		return "forbidden"
	case ErrInternal:
		return "internal"
	case ErrValidation:
		return "validation"
	case ErrMissingToken:
		return "missing_token"
	case ErrNetwork:
		return "network"
	case ErrServer:
		return "server"
	case ErrDecode:
		return "decode"
	case ErrInFlight:
		return "in_flight"
	case ErrConflict:
		return "conflict"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error constructors
func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewValidation reports a local validation failure. No request was sent.
func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

// NewMissingToken reports that a bearer-scoped call was attempted without a session token.
func NewMissingToken() *AppError {
	return &AppError{
		Code:    ErrMissingToken,
		Message: "missing authentication token",
	}
}

// NewNetwork reports that the server could not be reached.
func NewNetwork(err error) *AppError {
	return &AppError{
		Code:    ErrNetwork,
		Message: "server unreachable",
		Err:     err,
	}
}

// NewServer reports a non-2xx response. message is the server supplied message, if any.
func NewServer(status int, message string) *AppError {
	code := ErrServer
	switch status {
	case 400, 422:
		code = ErrBadRequest
	case 401:
		code = ErrUnauthorized
	case 403:
		code = ErrForbidden
	case 404:
		code = ErrNotFound
	case 409:
		code = ErrConflict
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func NewDecode(err error) *AppError {
	return &AppError{
		Code:    ErrDecode,
		Message: "invalid response body",
		Err:     err,
	}
}

func NewInFlight() *AppError {
	return &AppError{
		Code:    ErrInFlight,
		Message: "a request is already in progress",
	}
}

func NewUnauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: message,
		Err:     err,
	}
}

func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// As is a shorthand for extracting the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}
