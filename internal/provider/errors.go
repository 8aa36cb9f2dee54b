package provider

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common provider failures.
var (
	ErrNoCandidates  = errors.New("no candidates in response")
	ErrEmptyResponse = errors.New("empty response content")

	ErrContentBlocked = errors.New("content blocked by safety filters")
	ErrAuthentication = errors.New("authentication failed")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeToolUseFailed  ErrorCode = "tool_use_failed"
)

// Error wraps provider failures with a code. RetryAfter is the delay the
// service asked for, zero when it gave none.
// Body keeps the raw error payload returned by the service, which may embed
// the model's malformed generation.
type Error struct {
	Code       ErrorCode
	Message    string
	Body       string
	Underlying error
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Underlying)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// IsRateLimited reports whether err is a provider rate limit rejection.
func IsRateLimited(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Code == ErrorCodeRateLimit
}

// RetryAfter returns the delay a rate limited service asked for, or zero.
func RetryAfter(err error) time.Duration {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.RetryAfter
	}
	return 0
}
