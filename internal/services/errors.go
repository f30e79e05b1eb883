package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the failure taxonomy. Callers classify failures with
// errors.Is against these and never by string matching.
var (
	// ErrInvalidGoal rejects empty or unusable book goals.
	ErrInvalidGoal = errors.New("invalid goal")
	// ErrPlanningFailed aborts the whole book-creation flow; no partial
	// roadmap is ever persisted.
	ErrPlanningFailed = errors.New("planning failed")
	// ErrGenerationFailed marks a module generation attempt that produced no
	// usable content.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrAuth indicates a bad or missing provider API key. Surfaced
	// distinctly so the user is pointed at settings.
	ErrAuth = errors.New("provider authentication failed")
	// ErrRateLimited indicates the provider throttled the request. Retryable
	// with backoff.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrTransient covers network failures and timeouts. Retryable up to a
	// capped number of automatic attempts.
	ErrTransient = errors.New("transient failure")
	// ErrProvider covers any other provider failure (malformed payload,
	// unexpected status). Not retried automatically.
	ErrProvider = errors.New("provider error")
	// ErrQuotaExceeded rejects generation starts when the credit gate denies.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrInvalidState rejects an operation illegal for the current module
	// status (e.g. retrying a module that is not in error).
	ErrInvalidState = errors.New("invalid state")
	// ErrExportFailed marks export attempts on books without usable content.
	ErrExportFailed = errors.New("export failed")
	// ErrImportFailed marks malformed or unreadable backup files.
	ErrImportFailed = errors.New("import failed")
	// ErrStorageFull is reported distinctly when persistence fails for lack
	// of space, never masked as a generic failure.
	ErrStorageFull = errors.New("storage full")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProvider
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a failure may be retried automatically.
// Rate limits and transient failures qualify; auth and generic provider
// errors require user action or a manual retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}

// UserMessage extracts a human-readable message for UI surfaces, with a hint
// appended for failures the user can act on directly.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case errors.Is(err, ErrAuth):
		return msg + " (check the provider API key in settings)"
	case errors.Is(err, ErrStorageFull):
		return msg + " (free up disk space and retry)"
	default:
		return msg
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
