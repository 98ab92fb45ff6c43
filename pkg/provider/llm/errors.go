package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"syscall"
)

// RequestError wraps a provider failure with enough information for callers
// to distinguish transient faults from permanent ones.
type RequestError struct {
	// Provider is the name of the backend that produced the error.
	Provider string

	// StatusCode is the HTTP status returned by the backend, or 0 for
	// transport-level failures that never produced a response.
	StatusCode int

	// Err is the underlying error.
	Err error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm/%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm/%s: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient. HTTP 429 and the
// server/gateway statuses (500, 502, 503, 504) are transient, as are
// transport-level faults such as connection resets and deadline timeouts.
// Authentication and validation failures are permanent.
func (e *RequestError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	case 0:
		return isTransient(e.Err)
	}
	return false
}

// IsRetryable reports whether err may succeed on a later attempt. It honours
// [RequestError.Retryable] when err carries a RequestError anywhere in its
// chain and falls back to transport-level classification otherwise.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Retryable()
	}
	return isTransient(err)
}

// isTransient classifies errors that never produced an HTTP response.
// Context cancellation is deliberately not transient: the caller gave up.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// statusPattern matches an HTTP status code embedded in SDK error text, e.g.
// "unexpected status code: 429" or "status 503". Used as a fallback for
// backends that do not expose a typed error.
var statusPattern = regexp.MustCompile(`(?i)status(?: code)?[: ]+([1-5]\d\d)\b`)

// StatusFromError extracts an HTTP status code from err's text when the SDK
// exposes no typed error. Returns 0 when none is found.
func StatusFromError(err error) int {
	if err == nil {
		return 0
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return code
}
