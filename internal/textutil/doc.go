// Package textutil provides small text normalization helpers shared by the
// planner, export engine, and CLI.
package textutil
