// Package filesystem provides filesystem implementations for specinit.
//
// Everything is backed by afero: the OS filesystem in production and
// afero's in-memory or read-only filesystems in tests.
package filesystem
