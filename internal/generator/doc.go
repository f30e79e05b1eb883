// Package generator writes the prose for individual book modules, one
// provider call per module.
package generator
