// Package planner turns a learning goal into a book roadmap: title,
// description, and an ordered list of pending modules.
package planner
