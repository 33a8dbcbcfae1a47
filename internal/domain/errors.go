package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// PayloadTooLargeError indicates an upload over the profile's size limit
	PayloadTooLargeError struct {
		Message string
	}

	// UnsupportedMediaTypeError indicates an upload that is not an allowed image type
	UnsupportedMediaTypeError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string             { return e.Message }
func (e *ValidationError) Error() string           { return e.Message }
func (e *UnauthorizedError) Error() string         { return e.Message }
func (e *ForbiddenError) Error() string            { return e.Message }
func (e *PayloadTooLargeError) Error() string      { return e.Message }
func (e *UnsupportedMediaTypeError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int             { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int           { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int         { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int            { return http.StatusForbidden }
func (e *PayloadTooLargeError) StatusCode() int      { return http.StatusRequestEntityTooLarge }
func (e *UnsupportedMediaTypeError) StatusCode() int { return http.StatusUnsupportedMediaType }

// Is allows errors.Is() to match the typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool             { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool           { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool         { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool            { return target == ErrForbidden }
func (e *PayloadTooLargeError) Is(target error) bool      { return target == ErrPayloadTooLarge }
func (e *UnsupportedMediaTypeError) Is(target error) bool { return target == ErrUnsupportedMediaType }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)
