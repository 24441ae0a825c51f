package platform

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnsupportedPlatform is returned for any platform string with no
// registered adapter. It is a configuration error, never retried.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// PublishError is an adapter-classified upstream failure. Authentication and
// permission failures are not retryable; rate limits, timeouts and upstream
// 5xx responses are.
type PublishError struct {
	Retryable bool
	Message   string
}

func (e *PublishError) Error() string {
	return e.Message
}

// IsRetryable reports whether err is a PublishError marked retryable.
func IsRetryable(err error) bool {
	var pe *PublishError
	return errors.As(err, &pe) && pe.Retryable
}

func retryableErr(format string, args ...interface{}) *PublishError {
	return &PublishError{Retryable: true, Message: fmt.Sprintf(format, args...)}
}

func permanentErr(format string, args ...interface{}) *PublishError {
	return &PublishError{Retryable: false, Message: fmt.Sprintf(format, args...)}
}

// classifyStatus maps an upstream HTTP status to a PublishError.
func classifyStatus(status int, message string) *PublishError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &PublishError{Retryable: false, Message: message}
	case status == http.StatusTooManyRequests || status >= 500:
		return &PublishError{Retryable: true, Message: message}
	default:
		return &PublishError{Retryable: false, Message: message}
	}
}
