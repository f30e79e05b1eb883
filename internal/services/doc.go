// Package services defines the shared failure taxonomy used across the
// generation pipeline. Components tag errors with sentinel markers via Wrap
// so the session orchestrator and CLI can classify them without string
// matching.
package services
