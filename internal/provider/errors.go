package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pustakam/internal/services"
)

// statusError carries the HTTP status and suggested retry delay from a failed
// backend call. It is always wrapped under one of the services sentinels.
type statusError struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("http %d", e.status)
	}
	return fmt.Sprintf("http %d: %s", e.status, e.body)
}

// RetryAfter extracts the backend-suggested retry delay from a rate-limit
// error, or zero when none was given.
func RetryAfter(err error) time.Duration {
	var se *statusError
	if errors.As(err, &se) {
		return se.retryAfter
	}
	return 0
}

// classifyStatus maps an HTTP failure onto the shared error taxonomy:
// 401/403 are auth failures, 429 is rate limiting, 408 and 5xx are
// transient, everything else is a provider fault.
func classifyStatus(name Name, op string, status int, body string, header http.Header) error {
	se := &statusError{status: status, body: snippet(body)}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrAuth, string(name), op, "request rejected", se)
	case status == http.StatusTooManyRequests:
		se.retryAfter = parseRetryAfter(header.Get("Retry-After"))
		return services.Wrap(services.ErrRateLimited, string(name), op, "rate limited", se)
	case status == http.StatusRequestTimeout || status >= 500:
		return services.Wrap(services.ErrTransient, string(name), op, "backend unavailable", se)
	default:
		return services.Wrap(services.ErrProvider, string(name), op, "request failed", se)
	}
}

// classifyTransport maps transport-level failures. Timeouts and network
// errors are transient; a canceled context is passed through unchanged so
// pause is never misreported as a provider fault.
func classifyTransport(name Name, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTransient, string(name), op, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return services.Wrap(services.ErrTransient, string(name), op, "request timed out", err)
		}
		return services.Wrap(services.ErrTransient, string(name), op, "network error", err)
	}
	return services.Wrap(services.ErrProvider, string(name), op, "request failed", err)
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	const limit = 200
	if len(body) > limit {
		return body[:limit]
	}
	return body
}
