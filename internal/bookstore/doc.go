// Package bookstore persists the book library in SQLite. It owns the schema,
// the settings and bookmark rows, the credit ledger, and the JSON backup
// format used by export/import.
package bookstore
