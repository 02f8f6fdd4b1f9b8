package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/spetersoncode/nollama"
	"google.golang.org/genai"
)

// Retryable reports whether err is worth another attempt. Provider errors
// that carry a category decide for themselves. Uncategorized errors are
// judged by HTTP status, then by network failure, then by wording.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var categorized nollama.CategorizedError
	if errors.As(err, &categorized) {
		return categorized.Category() == nollama.ErrorTransient
	}
	if code, ok := statusOf(err); ok {
		return code == 429 || code >= 500
	}
	return networkFailure(err) || soundsTransient(err.Error())
}

func statusOf(err error) (int, bool) {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode(), true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}

func networkFailure(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && (dnsErr.IsTemporary || dnsErr.IsTimeout) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

var transientWording = []string{
	"connection reset",
	"timeout",
	"temporarily unavailable",
	"service unavailable",
	"rate limit",
	"overloaded",
}

func soundsTransient(msg string) bool {
	msg = strings.ToLower(msg)
	for _, w := range transientWording {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
