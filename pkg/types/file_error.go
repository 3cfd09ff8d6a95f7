package types

import "fmt"

// FileOp names the step at which a per-file failure happened
type FileOp string

const (
	OpScan   FileOp = "scan"
	OpRead   FileOp = "read"
	OpDecode FileOp = "decode"
	OpWrite  FileOp = "write"
	OpRemove FileOp = "remove"
)

// FileError records a failure for a single path. Runs collect these instead
// of aborting, so the final report lists every file that was skipped.
type FileError struct {
	Path string
	Op   FileOp
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}
