package services_test

import (
	"errors"
	"strings"
	"testing"

	"pustakam/internal/services"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrTransient, "provider", "complete", "request failed", cause)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	if !strings.Contains(err.Error(), "provider: complete: request failed") {
		t.Fatalf("detail missing: %v", err)
	}
}

func TestWrapNilMarkerDefaultsToProvider(t *testing.T) {
	err := services.Wrap(nil, "provider", "complete", "", nil)
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider marker, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		marker error
		want   bool
	}{
		{services.ErrRateLimited, true},
		{services.ErrTransient, true},
		{services.ErrAuth, false},
		{services.ErrProvider, false},
		{services.ErrQuotaExceeded, false},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "provider", "complete", "", nil)
		if got := services.Retryable(err); got != tc.want {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.marker, got, tc.want)
		}
	}
}

func TestUserMessageHints(t *testing.T) {
	err := services.Wrap(services.ErrAuth, "provider", "complete", "401", nil)
	if msg := services.UserMessage(err); !strings.Contains(msg, "settings") {
		t.Fatalf("expected settings hint, got %q", msg)
	}
	full := services.Wrap(services.ErrStorageFull, "store", "upsert", "disk full", nil)
	if msg := services.UserMessage(full); !strings.Contains(msg, "disk space") {
		t.Fatalf("expected disk space hint, got %q", msg)
	}
}
