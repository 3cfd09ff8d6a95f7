// Package scanner builds the target file set: every text file under the
// project root that is eligible for placeholder substitution.
package scanner

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/types"
)

// binarySniffLen matches the window git uses to classify binary files
const binarySniffLen = 8000

// SkipReason explains why an entry is not part of the target set
type SkipReason string

const (
	SkipDir       SkipReason = "skipped directory"
	SkipExcluded  SkipReason = "excluded"
	SkipSymlink   SkipReason = "symlink"
	SkipBinary    SkipReason = "binary"
	SkipTooLarge  SkipReason = "too large"
	SkipIrregular SkipReason = "not a regular file"
)

// Skipped is an entry left out of the target set
type Skipped struct {
	Path   string
	Reason SkipReason
}

// Rules decide which files belong to the target set
type Rules struct {
	// SkipDirs are directory base names never descended into
	SkipDirs []string
	// Include globs restrict the set when non-empty
	Include []string
	// Exclude globs remove files from the set
	Exclude []string
	// ExcludePaths are exact root-relative slash paths, e.g. the initializer's own files
	ExcludePaths []string
	// MaxFileSize skips larger files; zero disables the limit
	MaxFileSize int64
}

// RulesFromConfig builds scan rules from configuration. The project config
// file and cleanup paths are always excluded.
func RulesFromConfig(cfg *config.Config) Rules {
	exclude := []string{config.ProjectConfigFile}
	exclude = append(exclude, cfg.Cleanup.Paths...)
	return Rules{
		SkipDirs:     cfg.Scan.SkipDirs,
		Include:      cfg.Scan.Include,
		Exclude:      cfg.Scan.Exclude,
		ExcludePaths: exclude,
		MaxFileSize:  cfg.Scan.MaxFileSize,
	}
}

// TargetSet is the result of a scan
type TargetSet struct {
	Root string
	// Files are root-relative slash paths in lexical walk order
	Files   []string
	Skipped []Skipped
	// Errors are entries that could not be inspected; they are not in Files
	Errors []types.FileError
}

// Abs returns the filesystem path of a root-relative target
func (s *TargetSet) Abs(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Scan walks root and returns the target set. Per-entry problems are
// collected in TargetSet.Errors; only an unusable root is a fatal error.
func Scan(fsys types.FS, root string, rules Rules) (*TargetSet, error) {
	logger := logging.GetLogger("scanner")
	done := logging.LogOperationStart(logger, "scan")
	defer done()

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrScan, "cannot access project root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrScan, "project root %s is not a directory", root)
	}

	s := &scan{
		fsys:     fsys,
		rules:    rules,
		skipDirs: toSet(rules.SkipDirs),
		excluded: toSet(rules.ExcludePaths),
		set:      &TargetSet{Root: root},
	}
	s.walk(root, "")

	logger.Debug().
		Int("files", len(s.set.Files)).
		Int("skipped", len(s.set.Skipped)).
		Int("errors", len(s.set.Errors)).
		Msg("Scan complete")

	return s.set, nil
}

type scan struct {
	fsys     types.FS
	rules    Rules
	skipDirs map[string]bool
	excluded map[string]bool
	set      *TargetSet
}

func (s *scan) walk(dir, rel string) {
	entries, err := s.fsys.ReadDir(dir)
	if err != nil {
		s.fail(rel, err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		childPath := filepath.Join(dir, name)

		info, err := s.fsys.Lstat(childPath)
		if err != nil {
			s.fail(childRel, err)
			continue
		}

		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			s.skip(childRel, SkipSymlink)
		case mode.IsDir():
			if s.skipDirs[name] {
				s.skip(childRel, SkipDir)
				continue
			}
			s.walk(childPath, childRel)
		case !mode.IsRegular():
			s.skip(childRel, SkipIrregular)
		default:
			s.consider(childPath, childRel, info)
		}
	}
}

func (s *scan) consider(abs, rel string, info fs.FileInfo) {
	if s.excluded[rel] || !s.included(rel) || matchAny(s.rules.Exclude, rel) {
		s.skip(rel, SkipExcluded)
		return
	}
	if s.rules.MaxFileSize > 0 && info.Size() > s.rules.MaxFileSize {
		s.skip(rel, SkipTooLarge)
		return
	}

	binary, err := s.sniff(abs)
	if err != nil {
		s.fail(rel, err)
		return
	}
	if binary {
		s.skip(rel, SkipBinary)
		return
	}
	s.set.Files = append(s.set.Files, rel)
}

func (s *scan) included(rel string) bool {
	return len(s.rules.Include) == 0 || matchAny(s.rules.Include, rel)
}

func (s *scan) sniff(abs string) (bool, error) {
	f, err := s.fsys.Open(abs)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return IsBinary(head[:n]), nil
}

func (s *scan) skip(rel string, reason SkipReason) {
	s.set.Skipped = append(s.set.Skipped, Skipped{Path: rel, Reason: reason})
}

func (s *scan) fail(rel string, err error) {
	logger := logging.GetLogger("scanner")
	logger.Warn().Err(err).Str("path", rel).Msg("Cannot inspect entry")
	if rel == "" {
		rel = "."
	}
	s.set.Errors = append(s.set.Errors, types.FileError{Path: rel, Op: types.OpScan, Err: err})
}

// IsBinary reports whether head looks like binary content
func IsBinary(head []byte) bool {
	if len(head) > binarySniffLen {
		head = head[:binarySniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// matchAny matches globs against the full relative path and the base name
func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		p = strings.TrimPrefix(p, "./")
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := path.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.TrimPrefix(filepath.ToSlash(item), "./")] = true
	}
	return set
}
