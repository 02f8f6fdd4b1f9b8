package nollama

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyInput is returned when the user submits a blank line.
	ErrEmptyInput = errors.New("input is empty")

	// ErrEmptyResponse is returned when a provider produced no usable text.
	ErrEmptyResponse = errors.New("empty response")
)

// ErrorCategory says what a caller can do about a provider error.
type ErrorCategory string

const (
	// ErrorTransient failures may succeed if the request is sent again:
	// rate limits, overloaded or unreachable servers.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent failures need the user to fix something outside the
	// conversation, such as an API key or account permissions.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput failures are rejections of the request itself: an
	// unknown model, an oversized conversation, a policy refusal.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is implemented by errors that know their category.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool
	StatusCode() int
	RetryAfter() time.Duration
}

// Error is a provider failure with the metadata needed to decide whether
// to retry it.
type Error struct {
	Provider Provider
	Message  string
	Kind     ErrorCategory
	Status   int           // HTTP status, 0 when there was no response
	Wait     time.Duration // server-requested delay before retrying
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(string(e.Provider))
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil && e.Err.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error             { return e.Err }
func (e *Error) Category() ErrorCategory   { return e.Kind }
func (e *Error) Retryable() bool           { return e.Kind == ErrorTransient }
func (e *Error) StatusCode() int           { return e.Status }
func (e *Error) RetryAfter() time.Duration { return e.Wait }

// NewError creates a categorized error for provider p.
func NewError(p Provider, kind ErrorCategory, msg string, status int, err error) *Error {
	return &Error{Provider: p, Message: msg, Kind: kind, Status: status, Err: err}
}

// WithRetryAfter records the delay the server asked for and returns e.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.Wait = d
	return e
}

// CategorizeStatusCode maps an HTTP status to a category. Unlisted codes
// are permanent.
func CategorizeStatusCode(code int) ErrorCategory {
	switch code {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return ErrorTransient
	case http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return ErrorUserInput
	}
	if code >= 500 && code < 600 {
		return ErrorTransient
	}
	return ErrorPermanent
}

func categorized(err error) (CategorizedError, bool) {
	var ce CategorizedError
	ok := errors.As(err, &ce)
	return ce, ok
}

// IsTransient reports whether err, or an error it wraps, is transient.
func IsTransient(err error) bool {
	ce, ok := categorized(err)
	return ok && ce.Category() == ErrorTransient
}

// IsPermanent reports whether err, or an error it wraps, is permanent.
func IsPermanent(err error) bool {
	ce, ok := categorized(err)
	return ok && ce.Category() == ErrorPermanent
}

// IsUserInput reports whether err, or an error it wraps, rejected the
// request itself.
func IsUserInput(err error) bool {
	ce, ok := categorized(err)
	return ok && ce.Category() == ErrorUserInput
}

// StatusCodeOf returns the HTTP status of a categorized error, or 0.
func StatusCodeOf(err error) int {
	if ce, ok := categorized(err); ok {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the server-requested delay of a categorized error,
// or 0.
func RetryAfterOf(err error) time.Duration {
	if ce, ok := categorized(err); ok {
		return ce.RetryAfter()
	}
	return 0
}
