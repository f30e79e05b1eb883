// Package logging provides slog construction with console and JSON handlers
// plus shared attribute helpers and field names.
package logging
