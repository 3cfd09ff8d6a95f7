// Package cleanup removes the initializer's own files once a project has
// been configured.
package cleanup

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/types"
)

// Report lists what SelfDelete removed and what needs manual cleanup
type Report struct {
	Removed  []string
	Missing  []string
	Failures []types.FileError
}

// Err returns a FILE_REMOVE error when anything could not be removed
func (r *Report) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrFileRemove, "manual cleanup required for %d path(s)", len(r.Failures))
}

// SelfDelete removes each root-relative path, then exe when it lives inside
// root. Missing paths are ignored. Failures are recorded, never returned.
func SelfDelete(fsys types.FS, root string, paths []string, exe string) *Report {
	logger := logging.GetLogger("cleanup")
	report := &Report{}

	targets := make([]string, 0, len(paths)+1)
	for _, p := range paths {
		targets = append(targets, filepath.Join(root, filepath.FromSlash(p)))
	}
	if exe != "" && within(root, exe) {
		targets = append(targets, filepath.Clean(exe))
	}

	seen := make(map[string]bool, len(targets))
	for _, abs := range targets {
		if seen[abs] {
			continue
		}
		seen[abs] = true

		rel := relative(root, abs)
		if _, err := fsys.Lstat(abs); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				report.Missing = append(report.Missing, rel)
				continue
			}
		}
		if err := fsys.Remove(abs); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				report.Missing = append(report.Missing, rel)
				continue
			}
			logger.Warn().Err(err).Str("path", rel).Msg("Cannot remove initializer file")
			report.Failures = append(report.Failures, types.FileError{
				Path: rel,
				Op:   types.OpRemove,
				Err:  errors.Wrap(err, errors.ErrFileRemove, "cannot remove"),
			})
			continue
		}
		logger.Info().Str("path", rel).Msg("Removed initializer file")
		report.Removed = append(report.Removed, rel)
	}

	pruneEmptyDirs(fsys, root, report.Removed)
	return report
}

// pruneEmptyDirs removes parent directories left empty by SelfDelete, up to
// but excluding root
func pruneEmptyDirs(fsys types.FS, root string, removed []string) {
	for _, rel := range removed {
		dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(rel)))
		for within(root, dir) && filepath.Clean(dir) != filepath.Clean(root) {
			entries, err := fsys.ReadDir(dir)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := fsys.Remove(dir); err != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}

func within(root, p string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func relative(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}
