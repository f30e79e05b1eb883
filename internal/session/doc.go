// Package session orchestrates book generation. It owns the one-session-per-
// book registry, the sequential module loop, pause/resume, manual retry and
// regeneration, and the automatic retry policy for transient provider
// failures. Every status transition is persisted before the loop moves on,
// so a crash or restart never loses more than the module in flight.
package session
