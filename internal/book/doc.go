// Package book defines the core domain model: projects, modules, reading
// bookmarks, and provider settings shared across the store, the generation
// session, and the CLI.
package book
