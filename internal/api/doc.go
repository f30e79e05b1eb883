// Package api holds the wire types shared by the IPC layer and the CLI, and
// the library workflows (create, list, export, backup, settings, bookmarks)
// that operate directly on the book store.
package api
