// Package main hosts the Pustakam CLI entrypoint and command graph.
//
// The Cobra-based command tree splits work two ways: generation control
// (start, pause, retry, regenerate, status) goes over the daemon's Unix
// socket via IPC, while library operations (create, list, export, backup,
// settings, bookmarks, credits) open the book store directly. It centralizes
// configuration resolution and socket discovery so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
