package ipc

import (
	"time"

	"pustakam/internal/api"
)

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse reports liveness.
type PingResponse struct {
	PID int
}

// StatusRequest asks for the daemon status.
type StatusRequest struct{}

// Check mirrors a preflight result over the wire.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// StatusResponse carries the daemon status.
type StatusResponse struct {
	PID           int
	StartedAt     time.Time
	DatabasePath  string
	SocketPath    string
	LogPath       string
	ActiveBooks   []string
	CreditBalance int64
	CreditsOn     bool
	Checks        []Check
}

// GenerateStartRequest starts or resumes generation for a book.
type GenerateStartRequest struct {
	BookID string
}

// GenerateStartResponse acknowledges a started session.
type GenerateStartResponse struct {
	Started bool
}

// GeneratePauseRequest pauses generation for a book.
type GeneratePauseRequest struct {
	BookID string
}

// GeneratePauseResponse acknowledges the pause.
type GeneratePauseResponse struct {
	Paused bool
}

// ModuleRetryRequest re-runs one errored module.
type ModuleRetryRequest struct {
	BookID   string
	ModuleID string
}

// ModuleRetryResponse acknowledges the retry.
type ModuleRetryResponse struct {
	Started bool
}

// ModuleRegenerateRequest re-runs one completed module.
type ModuleRegenerateRequest struct {
	BookID   string
	ModuleID string
}

// ModuleRegenerateResponse acknowledges the regeneration.
type ModuleRegenerateResponse struct {
	Started bool
}

// BookStatusRequest asks for one book's generation state.
type BookStatusRequest struct {
	BookID      string
	WithContent bool
}

// BookStatusResponse carries the book view.
type BookStatusResponse struct {
	Book api.Book
}
