// Package substitute rewrites the target file set through a replacement map.
//
// Files are processed one at a time. A failure on one file is recorded and
// the run moves on, so the result always lists every file that could not be
// rewritten. Unchanged files are never written.
package substitute

import (
	"context"
	"path/filepath"
	"unicode/utf8"

	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/tokens"
	"github.com/specforge/specinit/pkg/types"
)

// Options control an Apply run
type Options struct {
	// DryRun computes the result without writing
	DryRun bool
}

// FileChange is a file whose content was (or would be) rewritten
type FileChange struct {
	Path   string
	Counts map[string]int
}

// Replacements returns the total number of token occurrences replaced
func (c FileChange) Replacements() int {
	n := 0
	for _, v := range c.Counts {
		n += v
	}
	return n
}

// Result aggregates an Apply run
type Result struct {
	Modified  []FileChange
	Unchanged int
	Failures  []types.FileError
	DryRun    bool
	// Interrupted is set when the context ended before every file was seen
	Interrupted bool
}

// Count returns the number of files modified
func (r *Result) Count() int {
	return len(r.Modified)
}

// Err returns a PARTIAL_FAILURE error when any file failed
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrPartialFailure, "%d file(s) could not be rewritten", len(r.Failures)).
		WithDetail("failures", len(r.Failures)).
		WithDetail("modified", len(r.Modified))
}

// Apply rewrites each root-relative file in files through m
func Apply(ctx context.Context, fsys types.FS, m *tokens.Map, root string, files []string, opts Options) *Result {
	logger := logging.GetLogger("substitute")
	done := logging.LogOperationStart(logger, "apply")
	defer done()

	result := &Result{DryRun: opts.DryRun}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Msg("Apply interrupted")
			result.Interrupted = true
			break
		}

		abs := filepath.Join(root, filepath.FromSlash(rel))
		change, ferr := applyFile(fsys, m, abs, opts.DryRun)
		switch {
		case ferr != nil:
			ferr.Path = rel
			logger.Warn().Str("path", rel).Str("op", string(ferr.Op)).Err(ferr.Err).Msg("File failed")
			result.Failures = append(result.Failures, *ferr)
		case change == nil:
			result.Unchanged++
		default:
			change.Path = rel
			logger.Debug().Str("path", rel).Interface("counts", change.Counts).Msg("File rewritten")
			result.Modified = append(result.Modified, *change)
		}
	}

	logger.Info().
		Int("modified", len(result.Modified)).
		Int("unchanged", result.Unchanged).
		Int("failed", len(result.Failures)).
		Bool("dry_run", opts.DryRun).
		Msg("Substitution finished")

	return result
}

// applyFile returns a nil change for files without any token
func applyFile(fsys types.FS, m *tokens.Map, abs string, dryRun bool) (*FileChange, *types.FileError) {
	info, err := fsys.Stat(abs)
	if err != nil {
		return nil, &types.FileError{Op: types.OpRead, Err: errors.Wrap(err, errors.ErrFileRead, "cannot stat file")}
	}

	data, err := fsys.ReadFile(abs)
	if err != nil {
		return nil, &types.FileError{Op: types.OpRead, Err: errors.Wrap(err, errors.ErrFileRead, "cannot read file")}
	}

	if !utf8.Valid(data) {
		return nil, &types.FileError{Op: types.OpDecode, Err: errors.New(errors.ErrFileEncoding, "file is not valid UTF-8")}
	}

	content := string(data)
	out, counts := m.Apply(content)
	if len(counts) == 0 || out == content {
		return nil, nil
	}

	if !dryRun {
		if err := fsys.WriteFileAtomic(abs, []byte(out), info.Mode().Perm()); err != nil {
			return nil, &types.FileError{Op: types.OpWrite, Err: errors.Wrap(err, errors.ErrFileWrite, "cannot write file")}
		}
	}

	return &FileChange{Counts: counts}, nil
}
