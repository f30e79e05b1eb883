// Package export renders finished (or partially finished) books to Markdown,
// plain text, and PDF files.
package export
