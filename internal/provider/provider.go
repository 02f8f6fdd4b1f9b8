// Package provider holds helpers shared by the provider SDK wrappers.
package provider

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/spetersoncode/nollama"
)

// Send delivers ev on ch unless ctx is done first. It reports whether the
// event was delivered, so stream goroutines can stop when nobody is reading.
func Send(ctx context.Context, ch chan<- nollama.StreamEvent, ev nollama.StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// ParseRetryAfter reads the delay a server asked for. The millisecond
// header sent by OpenAI and Anthropic wins over the standard Retry-After,
// which may be seconds or an HTTP date. It returns 0 when neither is usable.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	if ms, err := strconv.ParseFloat(resp.Header.Get("retry-after-ms"), 64); err == nil && ms > 0 {
		return time.Duration(ms * float64(time.Millisecond))
	}

	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(max(seconds, 0)) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}

// WrapStatus categorizes an SDK error by its HTTP status. A response that
// asks the client to come back later is transient whatever its status.
func WrapStatus(p nollama.Provider, status int, resp *http.Response, err error) error {
	e := nollama.NewError(p, nollama.CategorizeStatusCode(status), err.Error(), status, err)
	if wait := ParseRetryAfter(resp); wait > 0 {
		e.Kind = nollama.ErrorTransient
		e.Wait = wait
	}
	return e
}
