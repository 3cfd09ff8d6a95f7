package testutil

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FailFs wraps an afero.Fs and fails selected operations on selected paths.
// Paths are absolute and cleaned.
type FailFs struct {
	afero.Fs
	readErrs   map[string]error
	writeErrs  map[string]error
	removeErrs map[string]error
}

// NewFailFs wraps base
func NewFailFs(base afero.Fs) *FailFs {
	return &FailFs{
		Fs:         base,
		readErrs:   make(map[string]error),
		writeErrs:  make(map[string]error),
		removeErrs: make(map[string]error),
	}
}

// FailRead makes opening path for reading fail with err
func (f *FailFs) FailRead(path string, err error) *FailFs {
	f.readErrs[filepath.Clean(path)] = err
	return f
}

// FailWrite makes any replacement of path fail with err
func (f *FailFs) FailWrite(path string, err error) *FailFs {
	f.writeErrs[filepath.Clean(path)] = err
	return f
}

// FailRemove makes removing path fail with err
func (f *FailFs) FailRemove(path string, err error) *FailFs {
	f.removeErrs[filepath.Clean(path)] = err
	return f
}

func (f *FailFs) Open(name string) (afero.File, error) {
	if err, ok := f.readErrs[filepath.Clean(name)]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.Open(name)
}

func (f *FailFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	clean := filepath.Clean(name)
	if err, ok := f.readErrs[clean]; ok && flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if err, ok := f.writeErrs[clean]; ok && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *FailFs) Rename(oldname, newname string) error {
	if err, ok := f.writeErrs[filepath.Clean(newname)]; ok {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *FailFs) Remove(name string) error {
	if err, ok := f.removeErrs[filepath.Clean(name)]; ok {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	return f.Fs.Remove(name)
}

func (f *FailFs) RemoveAll(name string) error {
	if err, ok := f.removeErrs[filepath.Clean(name)]; ok {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	return f.Fs.RemoveAll(name)
}

// Fail installs a FailFs in front of the project's filesystem and returns it
func (p *Project) Fail() *FailFs {
	ff := NewFailFs(p.Mem)
	p.Base = ff
	return ff
}
