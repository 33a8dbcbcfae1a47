package upload

import (
	"errors"
	"fmt"
)

// Kind classifies an upload failure.
type Kind string

const (
	KindInvalidType    Kind = "invalid_type"
	KindTooLarge       Kind = "too_large"
	KindLimitReached   Kind = "limit_reached"
	KindServerRejected Kind = "server_rejected"
	KindNetworkFailure Kind = "network_failure"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInvalidType    = errors.New("file is not an image")
	ErrTooLarge       = errors.New("file exceeds size limit")
	ErrLimitReached   = errors.New("image limit reached")
	ErrServerRejected = errors.New("upload rejected by server")
	ErrNetworkFailure = errors.New("upload request failed")
)

var sentinels = map[Kind]error{
	KindInvalidType:    ErrInvalidType,
	KindTooLarge:       ErrTooLarge,
	KindLimitReached:   ErrLimitReached,
	KindServerRejected: ErrServerRejected,
	KindNetworkFailure: ErrNetworkFailure,
}

// Error is the typed failure returned by Upload.
type Error struct {
	Kind       Kind
	Message    string // human-readable, server-provided when available
	StatusCode int    // HTTP status for server rejections, 0 otherwise
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = sentinels[e.Kind].Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against the Kind's sentinel.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// LimitReached builds the error raised before a file is even chosen.
func LimitReached(max int) *Error {
	return &Error{
		Kind:    KindLimitReached,
		Message: fmt.Sprintf("at most %d images can be inserted", max),
	}
}

// KindOf extracts the Kind of err, or "" when err is not an upload error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether re-triggering the same upload may succeed.
// Validation failures never will.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindServerRejected, KindNetworkFailure:
		return true
	}
	return false
}

// UserMessage renders err for the transient status line.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Image upload failed, please try again"
	}
	switch e.Kind {
	case KindInvalidType:
		return "Only image files can be uploaded"
	case KindTooLarge, KindLimitReached:
		return e.Message
	case KindServerRejected:
		if e.Message != "" {
			return "Image upload failed: " + e.Message
		}
		return "Image upload failed, please try again"
	default:
		return "Image could not be uploaded, check your connection and try again"
	}
}
