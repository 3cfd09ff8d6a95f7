// Package types defines the filesystem abstraction specinit reads and
// writes the project through, and the per-file error record shared by the
// scan, substitute and cleanup stages.
package types
