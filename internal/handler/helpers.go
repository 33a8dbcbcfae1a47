package handler

import (
	"errors"
	"net/http"

	"achievements/internal/domain"
	"achievements/internal/httputil"
)

// statusFor maps a domain error to an HTTP status and a client-safe message.
// Unknown errors become a generic 500 so internals never leak.
func statusFor(err error) (int, string) {
	var httpErr domain.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode(), httpErr.Error()
	case errors.Is(err, httputil.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// handleError converts domain errors to RFC 7807 responses
func handleError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	httputil.RespondError(w, status, message)
}

// handleUploadError converts domain errors to failure envelopes
func handleUploadError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	httputil.RespondFailure(w, status, message)
}
