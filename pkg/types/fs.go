package types

import (
	"io"
	"io/fs"
)

// FS is the filesystem surface the initializer needs. Production code uses
// the OS; tests swap in an in-memory tree.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	// Lstat does not follow symlinks. Implementations without symlink
	// support fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)

	// WriteFileAtomic replaces name with data via a temp file and rename in
	// the same directory. On failure the original file is left unchanged.
	WriteFileAtomic(name string, data []byte, perm fs.FileMode) error

	Remove(name string) error
}
